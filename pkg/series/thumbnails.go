package series

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/hondanabooks/hondana/pkg/events"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// GetThumbnail returns the selected thumbnail for the series, or nil when the
// series has none. If the selected thumbnail's file has gone missing, a
// housekeeping pass prunes stale rows and promotes a replacement before the
// lookup is retried once.
func (svc *Service) GetThumbnail(ctx context.Context, seriesID int) (*models.SeriesThumbnail, error) {
	thumbnail, err := svc.selectedThumbnail(ctx, seriesID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if thumbnail != nil && thumbnailExists(thumbnail) {
		return thumbnail, nil
	}

	err = svc.ThumbnailsHousekeeping(ctx, seriesID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.selectedThumbnail(ctx, seriesID)
}

// GetThumbnailBytes returns the bytes of the series' effective cover image.
// It prefers the selected thumbnail; without one it falls back to a book
// cover chosen by the library's cover policy. Returns nil when no candidate
// produces an image.
func (svc *Service) GetThumbnailBytes(ctx context.Context, series *models.Series, userID int) ([]byte, error) {
	thumbnail, err := svc.GetThumbnail(ctx, series.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if thumbnail != nil {
		data, err := os.ReadFile(thumbnail.URL)
		if err == nil {
			return data, nil
		}
		svc.log.Warn("selected thumbnail unreadable, falling back to book cover", logger.Data{
			"series_id": series.ID,
			"url":       thumbnail.URL,
		})
	}

	policy, err := svc.libraryService.SeriesCoverPolicy(ctx, series.LibraryID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	bookID, err := svc.coverBookID(ctx, series.ID, userID, policy)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if bookID == nil {
		return nil, nil
	}

	return svc.bookService.GetThumbnailBytes(ctx, *bookID)
}

// AddThumbnail registers a thumbnail for a series. A row with the same URL is
// replaced rather than duplicated.
func (svc *Service) AddThumbnail(ctx context.Context, thumbnail *models.SeriesThumbnail) error {
	now := time.Now()
	if thumbnail.CreatedAt.IsZero() {
		thumbnail.CreatedAt = now
	}
	thumbnail.UpdatedAt = thumbnail.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.SeriesThumbnail)(nil)).
			Where("series_id = ?", thumbnail.SeriesID).
			Where("url = ?", thumbnail.URL).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewInsert().
			Model(thumbnail).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	svc.publisher.Publish(events.ThumbnailSeriesAdded{Thumbnail: thumbnail})

	if thumbnail.Selected {
		return svc.markThumbnailSelected(ctx, thumbnail)
	}
	return nil
}

// ThumbnailsHousekeeping reconciles the thumbnail rows of a series with the
// filesystem: rows whose file is gone are deleted, and afterwards exactly one
// of the remaining rows is selected (none if none remain). The pass is
// idempotent.
func (svc *Service) ThumbnailsHousekeeping(ctx context.Context, seriesID int) error {
	log := svc.log.Data(logger.Data{"series_id": seriesID})

	thumbnails := []*models.SeriesThumbnail{}
	err := svc.db.
		NewSelect().
		Model(&thumbnails).
		Where("st.series_id = ?", seriesID).
		Order("st.id ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	remaining := thumbnails[:0]
	for _, t := range thumbnails {
		if thumbnailExists(t) {
			remaining = append(remaining, t)
			continue
		}
		log.Warn("thumbnail file missing, deleting row", logger.Data{"url": t.URL})
		_, err := svc.db.
			NewDelete().
			Model(t).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	selected := []*models.SeriesThumbnail{}
	for _, t := range remaining {
		if t.Selected {
			selected = append(selected, t)
		}
	}

	switch {
	case len(selected) > 1:
		return svc.markThumbnailSelected(ctx, selected[0])
	case len(selected) == 0 && len(remaining) > 0:
		return svc.markThumbnailSelected(ctx, remaining[0])
	}
	return nil
}

func (svc *Service) markThumbnailSelected(ctx context.Context, thumbnail *models.SeriesThumbnail) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewUpdate().
			Model((*models.SeriesThumbnail)(nil)).
			Set("selected = ?", false).
			Where("series_id = ?", thumbnail.SeriesID).
			Where("id != ?", thumbnail.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		thumbnail.Selected = true
		_, err = tx.
			NewUpdate().
			Model(thumbnail).
			Set("selected = ?", true).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) selectedThumbnail(ctx context.Context, seriesID int) (*models.SeriesThumbnail, error) {
	thumbnail := &models.SeriesThumbnail{}
	err := svc.db.
		NewSelect().
		Model(thumbnail).
		Where("st.series_id = ?", seriesID).
		Where("st.selected = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return thumbnail, nil
}

// coverBookID picks the book whose cover represents the series under the
// given policy. Returns nil when the series has no suitable book.
func (svc *Service) coverBookID(ctx context.Context, seriesID, userID int, policy string) (*int, error) {
	switch policy {
	case models.SeriesCoverFirst:
		return svc.bookIDByNumber(ctx, seriesID, "ASC")
	case models.SeriesCoverLast:
		return svc.bookIDByNumber(ctx, seriesID, "DESC")
	case models.SeriesCoverFirstUnreadFirst:
		id, err := svc.firstUnreadBookID(ctx, seriesID, userID)
		if err != nil || id != nil {
			return id, errors.WithStack(err)
		}
		return svc.bookIDByNumber(ctx, seriesID, "ASC")
	case models.SeriesCoverFirstUnreadLast:
		id, err := svc.firstUnreadBookID(ctx, seriesID, userID)
		if err != nil || id != nil {
			return id, errors.WithStack(err)
		}
		return svc.bookIDByNumber(ctx, seriesID, "DESC")
	}
	return svc.bookIDByNumber(ctx, seriesID, "ASC")
}

func (svc *Service) bookIDByNumber(ctx context.Context, seriesID int, direction string) (*int, error) {
	book := &models.Book{}
	err := svc.db.
		NewSelect().
		Model(book).
		Column("b.id").
		Where("b.series_id = ?", seriesID).
		OrderExpr("b.number " + direction).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return &book.ID, nil
}

func (svc *Service) firstUnreadBookID(ctx context.Context, seriesID, userID int) (*int, error) {
	book := &models.Book{}
	err := svc.db.
		NewSelect().
		Model(book).
		Column("b.id").
		Where("b.series_id = ?", seriesID).
		Where("NOT EXISTS (SELECT 1 FROM read_progress rp WHERE rp.book_id = b.id AND rp.user_id = ? AND rp.completed)", userID).
		Order("b.number ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return &book.ID, nil
}

func thumbnailExists(thumbnail *models.SeriesThumbnail) bool {
	_, err := os.Stat(thumbnail.URL)
	return err == nil
}
