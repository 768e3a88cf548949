package books

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID        *int
	SeriesID  *int
	LibraryID *int
}

type UpdateBookMetadataOptions struct {
	Columns []string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	SeriesID *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Metadata").
		Relation("Media")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.SeriesID != nil {
		q = q.Where("b.series_id = ?", *opts.SeriesID)
	}
	if opts.LibraryID != nil {
		q = q.Where("b.library_id = ?", *opts.LibraryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Metadata").
		Relation("Media").
		Order("b.number ASC")

	if opts.SeriesID != nil {
		q = q.Where("b.series_id = ?", *opts.SeriesID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// FindAllBySeriesIDs loads the books of the given series, including
// soft-deleted ones so that delete cascades see every row.
func (svc *Service) FindAllBySeriesIDs(ctx context.Context, idb bun.IDB, seriesIDs []int) ([]*models.Book, error) {
	books := []*models.Book{}
	if len(seriesIDs) == 0 {
		return books, nil
	}

	err := idb.
		NewSelect().
		Model(&books).
		Where("b.series_id IN (?)", bun.In(seriesIDs)).
		WhereAllWithDeleted().
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

// PageCounts returns the media page count for each of the given books.
func (svc *Service) PageCounts(ctx context.Context, bookIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return counts, nil
	}

	media := []*models.Media{}
	err := svc.db.
		NewSelect().
		Model(&media).
		Where("m.book_id IN (?)", bun.In(bookIDs)).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, m := range media {
		counts[m.BookID] = m.PageCount
	}
	return counts, nil
}

// SoftDeleteMany stamps the deletion timestamp on the given books. It runs
// against the caller's transaction handle so a series-level cascade stays
// atomic.
func (svc *Service) SoftDeleteMany(ctx context.Context, idb bun.IDB, booksToDelete []*models.Book) error {
	if len(booksToDelete) == 0 {
		return nil
	}

	ids := make([]int, len(booksToDelete))
	for i, b := range booksToDelete {
		ids[i] = b.ID
	}

	_, err := idb.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("deleted_at = ?", time.Now()).
		Where("id IN (?)", bun.In(ids)).
		WhereAllWithDeleted().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteMany removes the given books and every dependent row (read progress,
// media, metadata). It runs against the caller's transaction handle.
func (svc *Service) DeleteMany(ctx context.Context, idb bun.IDB, booksToDelete []*models.Book) error {
	if len(booksToDelete) == 0 {
		return nil
	}

	ids := make([]int, len(booksToDelete))
	for i, b := range booksToDelete {
		ids[i] = b.ID
	}

	_, err := idb.
		NewDelete().
		Model((*models.ReadProgress)(nil)).
		Where("book_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = idb.
		NewDelete().
		Model((*models.Media)(nil)).
		Where("book_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = idb.
		NewDelete().
		Model((*models.BookMetadata)(nil)).
		Where("book_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = idb.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id IN (?)", bun.In(ids)).
		WhereAllWithDeleted().
		ForceDelete().
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) UpdateBookMetadata(ctx context.Context, metadata *models.BookMetadata, opts UpdateBookMetadataOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	metadata.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(metadata).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// GetThumbnailBytes returns the raw bytes of the book's cover image, or nil
// if the book has no cover or the file can't be read.
func (svc *Service) GetThumbnailBytes(ctx context.Context, bookID int) ([]byte, error) {
	media := &models.Media{}
	err := svc.db.
		NewSelect().
		Model(media).
		Where("m.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	if media.CoverPath == nil || *media.CoverPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(*media.CoverPath)
	if err != nil {
		// A missing or unreadable cover is not an error for callers; they
		// fall back to other candidates.
		return nil, nil
	}
	return data, nil
}
