package series

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hondanabooks/hondana/pkg/books"
	"github.com/hondanabooks/hondana/pkg/collections"
	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/events"
	"github.com/hondanabooks/hondana/pkg/jobs"
	"github.com/hondanabooks/hondana/pkg/libraries"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/hondanabooks/hondana/pkg/natsort"
	"github.com/hondanabooks/hondana/pkg/sortname"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type RetrieveSeriesOptions struct {
	ID             *int
	Name           *string
	LibraryID      *int
	IncludeDeleted bool
}

type ListSeriesOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int

	includeTotal bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

// Service orchestrates the series lifecycle. It owns no state of its own;
// every multi-entity mutation runs inside a single transaction and events are
// published only after a successful commit.
type Service struct {
	db                *bun.DB
	log               logger.Logger
	bookService       *books.Service
	libraryService    *libraries.Service
	collectionService *collections.Service
	jobService        *jobs.Service
	publisher         events.Publisher
}

func NewService(
	db *bun.DB,
	bookService *books.Service,
	libraryService *libraries.Service,
	collectionService *collections.Service,
	jobService *jobs.Service,
	publisher events.Publisher,
) *Service {
	return &Service{
		db:                db,
		log:               logger.New(),
		bookService:       bookService,
		libraryService:    libraryService,
		collectionService: collectionService,
		jobService:        jobService,
		publisher:         publisher,
	}
}

// CreateSeries inserts the series together with its metadata and an empty
// aggregation row, atomically. The returned series is re-read from storage so
// server-assigned defaults are visible to the caller.
func (svc *Service) CreateSeries(ctx context.Context, series *models.Series) (*models.Series, error) {
	now := time.Now()
	if series.CreatedAt.IsZero() {
		series.CreatedAt = now
	}
	series.UpdatedAt = series.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(series).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		metadata := &models.SeriesMetadata{
			SeriesID:  series.ID,
			Title:     series.Name,
			TitleSort: sortname.ForTitle(series.Name),
			CreatedAt: series.CreatedAt,
			UpdatedAt: series.CreatedAt,
		}
		_, err = tx.
			NewInsert().
			Model(metadata).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		aggregation := &models.BookMetadataAggregation{
			SeriesID:  series.ID,
			CreatedAt: series.CreatedAt,
			UpdatedAt: series.CreatedAt,
		}
		_, err = tx.
			NewInsert().
			Model(aggregation).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, errcodes.Conflict("Series")
		}
		return nil, errors.WithStack(err)
	}

	svc.publisher.Publish(events.SeriesAdded{Series: series})

	return svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &series.ID})
}

// AddBooks associates the candidate books with the series and creates their
// media and metadata siblings in one transaction. Every candidate must belong
// to the series' library; a violation aborts before any write.
func (svc *Service) AddBooks(ctx context.Context, series *models.Series, booksToAdd []*models.Book) error {
	if len(booksToAdd) == 0 {
		return nil
	}

	for _, book := range booksToAdd {
		if book.LibraryID != series.LibraryID {
			return errcodes.InvariantViolation("Book and series must belong to the same library.")
		}
	}

	now := time.Now()
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, book := range booksToAdd {
			book.SeriesID = series.ID
			if book.CreatedAt.IsZero() {
				book.CreatedAt = now
			}
			book.UpdatedAt = book.CreatedAt
		}

		_, err := tx.
			NewInsert().
			Model(&booksToAdd).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		media := make([]*models.Media, len(booksToAdd))
		metadata := make([]*models.BookMetadata, len(booksToAdd))
		for i, book := range booksToAdd {
			media[i] = &models.Media{
				BookID:    book.ID,
				Status:    models.MediaStatusUnknown,
				CreatedAt: now,
				UpdatedAt: now,
			}
			metadata[i] = &models.BookMetadata{
				BookID:     book.ID,
				Title:      book.Name,
				Number:     strconv.Itoa(book.Number),
				NumberSort: float64(book.Number),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		}

		_, err = tx.
			NewInsert().
			Model(&media).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewInsert().
			Model(&metadata).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, book := range booksToAdd {
		svc.publisher.Publish(events.BookAdded{Book: book})
	}

	return nil
}

// SortBooks renumbers the series' books to their 1-based rank under natural
// ordering of the book names. Metadata number fields follow the rank unless
// their individual lock flag is set; every metadata row whose numbering
// actually changed gets a field-scoped asynchronous refresh so a later import
// can't clobber the computed values.
func (svc *Service) SortBooks(ctx context.Context, series *models.Series) error {
	log := svc.log.Data(logger.Data{"series_id": series.ID})

	seriesBooks, err := svc.bookService.ListBooks(ctx, books.ListBooksOptions{SeriesID: &series.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(seriesBooks) == 0 {
		return svc.updateBookCount(ctx, series.ID, 0)
	}

	sort.SliceStable(seriesBooks, func(i, j int) bool {
		return natsort.Less(seriesBooks[i].Name, seriesBooks[j].Name)
	})

	now := time.Now()
	changedFields := map[int][]string{}
	metadataUpdates := []*models.BookMetadata{}
	for i, book := range seriesBooks {
		rank := i + 1
		book.Number = rank
		book.UpdatedAt = now

		metadata := book.Metadata
		if metadata == nil {
			continue
		}
		if metadata.NumberLock && metadata.NumberSortLock {
			continue
		}

		fields := []string{}
		if !metadata.NumberLock && metadata.Number != strconv.Itoa(rank) {
			metadata.Number = strconv.Itoa(rank)
			fields = append(fields, jobs.MetadataFieldNumber)
		}
		if !metadata.NumberSortLock && metadata.NumberSort != float64(rank) {
			metadata.NumberSort = float64(rank)
			fields = append(fields, jobs.MetadataFieldNumberSort)
		}
		metadata.UpdatedAt = now
		metadataUpdates = append(metadataUpdates, metadata)
		if len(fields) > 0 {
			changedFields[metadata.BookID] = fields
		}
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewUpdate().
			Model(&seriesBooks).
			Column("number", "updated_at").
			Bulk().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if len(metadataUpdates) > 0 {
			_, err = tx.
				NewUpdate().
				Model(&metadataUpdates).
				Column("number", "number_sort", "updated_at").
				Bulk().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Series)(nil)).
			Set("book_count = ?", len(seriesBooks)).
			Set("updated_at = ?", now).
			Where("id = ?", series.ID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for bookID, fields := range changedFields {
		log.Debug("numbering changed, requesting metadata refresh", logger.Data{"book_id": bookID})
		err := svc.jobService.RequestMetadataRefresh(ctx, bookID, fields)
		if err != nil {
			// The refresh is best effort; the renumbering itself has already
			// committed.
			log.Err(err).Warn("metadata refresh request failed", logger.Data{"book_id": bookID})
		}
	}

	return nil
}

// SoftDeleteMany stamps the deletion timestamp on the given series and their
// books, atomically for the whole batch.
func (svc *Service) SoftDeleteMany(ctx context.Context, seriesList []*models.Series) error {
	if len(seriesList) == 0 {
		return nil
	}

	seriesIDs := make([]int, len(seriesList))
	for i, s := range seriesList {
		seriesIDs[i] = s.ID
	}
	svc.log.Info("soft deleting series", logger.Data{"series_ids": seriesIDs})

	now := time.Now()
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		seriesBooks, err := svc.bookService.FindAllBySeriesIDs(ctx, tx, seriesIDs)
		if err != nil {
			return errors.WithStack(err)
		}

		err = svc.bookService.SoftDeleteMany(ctx, tx, seriesBooks)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Series)(nil)).
			Set("deleted_at = ?", now).
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(seriesIDs)).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, s := range seriesList {
		svc.publisher.Publish(events.SeriesUpdated{Series: s})
	}

	return nil
}

// DeleteMany removes the given series and every dependent row: books with
// their media, metadata and read progress, collection memberships, thumbnails,
// series metadata and aggregations. The whole batch commits or rolls back as
// one.
func (svc *Service) DeleteMany(ctx context.Context, seriesList []*models.Series) error {
	if len(seriesList) == 0 {
		return nil
	}

	seriesIDs := make([]int, len(seriesList))
	for i, s := range seriesList {
		seriesIDs[i] = s.ID
	}
	svc.log.Info("deleting series", logger.Data{"series_ids": seriesIDs})

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		seriesBooks, err := svc.bookService.FindAllBySeriesIDs(ctx, tx, seriesIDs)
		if err != nil {
			return errors.WithStack(err)
		}

		err = svc.bookService.DeleteMany(ctx, tx, seriesBooks)
		if err != nil {
			return errors.WithStack(err)
		}

		err = svc.collectionService.RemoveSeriesFromAll(ctx, tx, seriesIDs)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, model := range []interface{}{
			(*models.SeriesThumbnail)(nil),
			(*models.SeriesMetadata)(nil),
			(*models.BookMetadataAggregation)(nil),
		} {
			_, err = tx.
				NewDelete().
				Model(model).
				Where("series_id IN (?)", bun.In(seriesIDs)).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err = tx.
			NewDelete().
			Model((*models.Series)(nil)).
			Where("id IN (?)", bun.In(seriesIDs)).
			WhereAllWithDeleted().
			ForceDelete().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, s := range seriesList {
		svc.publisher.Publish(events.SeriesDeleted{Series: s})
	}

	return nil
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series).
		Relation("Library").
		Relation("Metadata")

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.Name != nil && opts.LibraryID != nil {
		q = q.Where("LOWER(s.name) = LOWER(?) AND s.library_id = ?", *opts.Name, *opts.LibraryID)
	}
	if opts.IncludeDeleted {
		q = q.WhereAllWithDeleted()
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	s, _, err := svc.listSeriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	opts.includeTotal = true
	return svc.listSeriesWithTotal(ctx, opts)
}

func (svc *Service) listSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	series := []*models.Series{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&series).
		Relation("Metadata").
		OrderExpr("(SELECT title_sort FROM series_metadata WHERE series_id = s.id) ASC")

	if opts.LibraryID != nil {
		q = q.Where("s.library_id = ?", *opts.LibraryID)
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

	return series, total, nil
}

func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	series.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(series).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Series")
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) updateBookCount(ctx context.Context, seriesID, count int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Series)(nil)).
		Set("book_count = ?", count).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", seriesID).
		Exec(ctx)
	return errors.WithStack(err)
}
