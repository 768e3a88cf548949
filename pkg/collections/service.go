package collections

import (
	"context"
	"database/sql"
	"time"

	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveCollectionOptions struct {
	ID *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateCollection(ctx context.Context, collection *models.Collection) error {
	now := time.Now()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	collection.UpdatedAt = collection.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(collection).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveCollection(ctx context.Context, opts RetrieveCollectionOptions) (*models.Collection, error) {
	collection := &models.Collection{}

	q := svc.db.
		NewSelect().
		Model(collection).
		Relation("Series", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("cs.number ASC")
		})

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Collection")
		}
		return nil, errors.WithStack(err)
	}

	return collection, nil
}

// AddSeries appends a series to the collection.
func (svc *Service) AddSeries(ctx context.Context, collectionID, seriesID int) error {
	count, err := svc.db.
		NewSelect().
		Model((*models.CollectionSeries)(nil)).
		Where("collection_id = ?", collectionID).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	membership := &models.CollectionSeries{
		CollectionID: collectionID,
		SeriesID:     seriesID,
		Number:       count + 1,
	}
	_, err = svc.db.
		NewInsert().
		Model(membership).
		Exec(ctx)
	return errors.WithStack(err)
}

// RemoveSeriesFromAll removes the given series from every collection they
// belong to. It runs against the caller's transaction handle so a hard-delete
// cascade stays atomic.
func (svc *Service) RemoveSeriesFromAll(ctx context.Context, idb bun.IDB, seriesIDs []int) error {
	if len(seriesIDs) == 0 {
		return nil
	}

	_, err := idb.
		NewDelete().
		Model((*models.CollectionSeries)(nil)).
		Where("series_id IN (?)", bun.In(seriesIDs)).
		Exec(ctx)
	return errors.WithStack(err)
}
