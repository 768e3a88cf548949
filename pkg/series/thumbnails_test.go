package series

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func writeTestImage(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setCoverPath(t *testing.T, db *bun.DB, bookID int, path string) {
	t.Helper()

	_, err := db.NewUpdate().
		Model((*models.Media)(nil)).
		Set("cover_path = ?", path).
		Where("book_id = ?", bookID).
		Exec(context.Background())
	require.NoError(t, err)
}

func TestAddThumbnailReplacesSameURL(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	url := writeTestImage(t, dir, "cover.jpg", "img")
	require.NoError(t, svc.AddThumbnail(ctx, &models.SeriesThumbnail{SeriesID: series.ID, URL: url, Type: models.ThumbnailTypeSidecar}))
	require.NoError(t, svc.AddThumbnail(ctx, &models.SeriesThumbnail{SeriesID: series.ID, URL: url, Type: models.ThumbnailTypeSidecar}))

	count, err := db.NewSelect().
		Model((*models.SeriesThumbnail)(nil)).
		Where("series_id = ?", series.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddThumbnailSelectedUnselectsOthers(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	first := &models.SeriesThumbnail{
		SeriesID: series.ID,
		URL:      writeTestImage(t, dir, "a.jpg", "a"),
		Type:     models.ThumbnailTypeSidecar,
		Selected: true,
	}
	require.NoError(t, svc.AddThumbnail(ctx, first))

	second := &models.SeriesThumbnail{
		SeriesID: series.ID,
		URL:      writeTestImage(t, dir, "b.jpg", "b"),
		Type:     models.ThumbnailTypeUploaded,
		Selected: true,
	}
	require.NoError(t, svc.AddThumbnail(ctx, second))

	selected := []*models.SeriesThumbnail{}
	err = db.NewSelect().
		Model(&selected).
		Where("st.series_id = ?", series.ID).
		Where("st.selected = ?", true).
		Scan(ctx)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, second.ID, selected[0].ID)
}

func TestThumbnailsHousekeeping(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	missing := &models.SeriesThumbnail{SeriesID: series.ID, URL: filepath.Join(dir, "gone.jpg"), Type: models.ThumbnailTypeSidecar, Selected: true}
	alive1 := &models.SeriesThumbnail{SeriesID: series.ID, URL: writeTestImage(t, dir, "a.jpg", "a"), Type: models.ThumbnailTypeSidecar}
	alive2 := &models.SeriesThumbnail{SeriesID: series.ID, URL: writeTestImage(t, dir, "b.jpg", "b"), Type: models.ThumbnailTypeSidecar}
	for _, thumb := range []*models.SeriesThumbnail{missing, alive1, alive2} {
		_, err := db.NewInsert().Model(thumb).Exec(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, svc.ThumbnailsHousekeeping(ctx, series.ID))

	remaining := []*models.SeriesThumbnail{}
	err = db.NewSelect().
		Model(&remaining).
		Where("st.series_id = ?", series.ID).
		Order("st.id ASC").
		Scan(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2, "the row without a backing file is pruned")

	// The selected row was pruned, so the first survivor gets promoted.
	assert.True(t, remaining[0].Selected)
	assert.False(t, remaining[1].Selected)

	// A second pass changes nothing.
	require.NoError(t, svc.ThumbnailsHousekeeping(ctx, series.ID))
	again := []*models.SeriesThumbnail{}
	err = db.NewSelect().
		Model(&again).
		Where("st.series_id = ?", series.ID).
		Order("st.id ASC").
		Scan(ctx)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.True(t, again[0].Selected)
	assert.False(t, again[1].Selected)
}

func TestThumbnailsHousekeepingCollapsesMultipleSelected(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	for _, name := range []string{"a.jpg", "b.jpg"} {
		thumb := &models.SeriesThumbnail{
			SeriesID: series.ID,
			URL:      writeTestImage(t, dir, name, name),
			Type:     models.ThumbnailTypeSidecar,
			Selected: true,
		}
		_, err := db.NewInsert().Model(thumb).Exec(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, svc.ThumbnailsHousekeeping(ctx, series.ID))

	count, err := db.NewSelect().
		Model((*models.SeriesThumbnail)(nil)).
		Where("series_id = ?", series.ID).
		Where("selected = ?", true).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetThumbnailRecoversFromMissingFile(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	selectedPath := writeTestImage(t, dir, "selected.jpg", "s")
	backup := &models.SeriesThumbnail{SeriesID: series.ID, URL: writeTestImage(t, dir, "backup.jpg", "b"), Type: models.ThumbnailTypeSidecar}
	require.NoError(t, svc.AddThumbnail(ctx, backup))
	require.NoError(t, svc.AddThumbnail(ctx, &models.SeriesThumbnail{
		SeriesID: series.ID,
		URL:      selectedPath,
		Type:     models.ThumbnailTypeUploaded,
		Selected: true,
	}))

	thumb, err := svc.GetThumbnail(ctx, series.ID)
	require.NoError(t, err)
	require.NotNil(t, thumb)
	assert.Equal(t, selectedPath, thumb.URL)

	// The selected file disappears; the lookup heals itself.
	require.NoError(t, os.Remove(selectedPath))

	thumb, err = svc.GetThumbnail(ctx, series.ID)
	require.NoError(t, err)
	require.NotNil(t, thumb)
	assert.Equal(t, backup.URL, thumb.URL)
	assert.True(t, thumb.Selected)
}

func TestGetThumbnailNone(t *testing.T) {
	t.Parallel()
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	library := createTestLibrary(t, db, models.SeriesCoverFirst)

	series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
	require.NoError(t, err)

	thumb, err := svc.GetThumbnail(ctx, series.ID)
	require.NoError(t, err)
	assert.Nil(t, thumb)
}

func TestGetThumbnailBytesCoverPolicy(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, policy string) (*Service, *bun.DB, *models.Series, []*models.Book) {
		svc, db, _ := newTestService(t)
		ctx := context.Background()
		dir := t.TempDir()
		library := createTestLibrary(t, db, policy)

		series, err := svc.CreateSeries(ctx, &models.Series{Name: "Dune", LibraryID: library.ID})
		require.NoError(t, err)
		added := addTestBooks(t, svc, series, "Dune 1", "Dune 2")

		setCoverPath(t, db, added[0].ID, writeTestImage(t, dir, "first.jpg", "FIRST"))
		setCoverPath(t, db, added[1].ID, writeTestImage(t, dir, "last.jpg", "LAST"))
		return svc, db, series, added
	}

	t.Run("first", func(t *testing.T) {
		t.Parallel()
		svc, _, series, _ := setup(t, models.SeriesCoverFirst)

		data, err := svc.GetThumbnailBytes(context.Background(), series, 1)
		require.NoError(t, err)
		assert.Equal(t, "FIRST", string(data))
	})

	t.Run("last", func(t *testing.T) {
		t.Parallel()
		svc, _, series, _ := setup(t, models.SeriesCoverLast)

		data, err := svc.GetThumbnailBytes(context.Background(), series, 1)
		require.NoError(t, err)
		assert.Equal(t, "LAST", string(data))
	})

	t.Run("first unread falls through to unread book", func(t *testing.T) {
		t.Parallel()
		svc, db, series, added := setup(t, models.SeriesCoverFirstUnreadFirst)
		ctx := context.Background()

		_, err := db.NewInsert().
			Model(&models.ReadProgress{BookID: added[0].ID, UserID: 1, Page: 10, Completed: true}).
			Exec(ctx)
		require.NoError(t, err)

		data, err := svc.GetThumbnailBytes(ctx, series, 1)
		require.NoError(t, err)
		assert.Equal(t, "LAST", string(data))

		// Another user hasn't read anything, so they still get the first book.
		data, err = svc.GetThumbnailBytes(ctx, series, 2)
		require.NoError(t, err)
		assert.Equal(t, "FIRST", string(data))
	})

	t.Run("first unread falls back when everything is read", func(t *testing.T) {
		t.Parallel()
		svc, db, series, added := setup(t, models.SeriesCoverFirstUnreadFirst)
		ctx := context.Background()

		for _, b := range added {
			_, err := db.NewInsert().
				Model(&models.ReadProgress{BookID: b.ID, UserID: 1, Page: 10, Completed: true}).
				Exec(ctx)
			require.NoError(t, err)
		}

		data, err := svc.GetThumbnailBytes(ctx, series, 1)
		require.NoError(t, err)
		assert.Equal(t, "FIRST", string(data))
	})

	t.Run("selected thumbnail wins over policy", func(t *testing.T) {
		t.Parallel()
		svc, _, series, _ := setup(t, models.SeriesCoverFirst)
		ctx := context.Background()
		dir := t.TempDir()

		require.NoError(t, svc.AddThumbnail(ctx, &models.SeriesThumbnail{
			SeriesID: series.ID,
			URL:      writeTestImage(t, dir, "own.jpg", "OWN"),
			Type:     models.ThumbnailTypeUploaded,
			Selected: true,
		}))

		data, err := svc.GetThumbnailBytes(ctx, series, 1)
		require.NoError(t, err)
		assert.Equal(t, "OWN", string(data))
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		svc, db, _ := newTestService(t)
		ctx := context.Background()
		library := createTestLibrary(t, db, models.SeriesCoverFirst)

		series, err := svc.CreateSeries(ctx, &models.Series{Name: "Empty", LibraryID: library.ID})
		require.NoError(t, err)

		data, err := svc.GetThumbnailBytes(ctx, series, 1)
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}
