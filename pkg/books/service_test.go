package books

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/hondanabooks/hondana/pkg/migrations"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedSeries(t *testing.T, db *bun.DB, names ...string) (*models.Series, []*models.Book) {
	t.Helper()
	ctx := context.Background()

	library := &models.Library{Name: "Test Library", SeriesCover: models.SeriesCoverFirst}
	_, err := db.NewInsert().Model(library).Exec(ctx)
	require.NoError(t, err)

	series := &models.Series{Name: "Test Series", LibraryID: library.ID}
	_, err = db.NewInsert().Model(series).Exec(ctx)
	require.NoError(t, err)

	seeded := make([]*models.Book, len(names))
	for i, name := range names {
		book := &models.Book{LibraryID: library.ID, SeriesID: series.ID, Name: name, Number: i + 1}
		_, err = db.NewInsert().Model(book).Exec(ctx)
		require.NoError(t, err)

		metadata := &models.BookMetadata{BookID: book.ID, Title: name}
		_, err = db.NewInsert().Model(metadata).Exec(ctx)
		require.NoError(t, err)

		media := &models.Media{BookID: book.ID, Status: models.MediaStatusReady, PageCount: (i + 1) * 10}
		_, err = db.NewInsert().Model(media).Exec(ctx)
		require.NoError(t, err)

		seeded[i] = book
	}
	return series, seeded
}

func TestListBooks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	series, _ := seedSeries(t, db, "Book A", "Book B")

	listed, err := svc.ListBooks(ctx, ListBooksOptions{SeriesID: &series.ID})
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Ordered by number with relations loaded.
	assert.Equal(t, "Book A", listed[0].Name)
	assert.Equal(t, "Book B", listed[1].Name)
	require.NotNil(t, listed[0].Metadata)
	require.NotNil(t, listed[0].Media)
}

func TestPageCounts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, seeded := seedSeries(t, db, "Book A", "Book B")

	counts, err := svc.PageCounts(ctx, []int{seeded[0].ID, seeded[1].ID})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{seeded[0].ID: 10, seeded[1].ID: 20}, counts)

	counts, err = svc.PageCounts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSoftDeleteMany(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	series, seeded := seedSeries(t, db, "Book A", "Book B")

	require.NoError(t, svc.SoftDeleteMany(ctx, db, seeded))

	listed, err := svc.ListBooks(ctx, ListBooksOptions{SeriesID: &series.ID})
	require.NoError(t, err)
	assert.Empty(t, listed, "soft-deleted books are hidden from default queries")

	// Cascade loading still sees them.
	all, err := svc.FindAllBySeriesIDs(ctx, db, []int{series.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteMany(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	series, seeded := seedSeries(t, db, "Book A")

	_, err := db.NewInsert().Model(&models.ReadProgress{BookID: seeded[0].ID, UserID: 1, Page: 5}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMany(ctx, db, seeded))

	for _, model := range []interface{}{
		(*models.ReadProgress)(nil),
		(*models.Media)(nil),
		(*models.BookMetadata)(nil),
	} {
		count, err := db.NewSelect().Model(model).Where("book_id = ?", seeded[0].ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	all, err := svc.FindAllBySeriesIDs(ctx, db, []int{series.ID})
	require.NoError(t, err)
	assert.Empty(t, all, "rows are gone, not just soft deleted")
}

func TestGetThumbnailBytes(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	dir := t.TempDir()

	_, seeded := seedSeries(t, db, "Book A", "Book B")

	coverPath := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("COVER"), 0o644))
	_, err := db.NewUpdate().
		Model((*models.Media)(nil)).
		Set("cover_path = ?", coverPath).
		Where("book_id = ?", seeded[0].ID).
		Exec(ctx)
	require.NoError(t, err)

	data, err := svc.GetThumbnailBytes(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "COVER", string(data))

	// No cover path recorded.
	data, err = svc.GetThumbnailBytes(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Nil(t, data)

	// Recorded path whose file is gone.
	require.NoError(t, os.Remove(coverPath))
	data, err = svc.GetThumbnailBytes(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Nil(t, data)
}
