package series

import (
	"context"
	"time"

	"github.com/hondanabooks/hondana/pkg/books"
	"github.com/hondanabooks/hondana/pkg/events"
	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// MarkReadProgressCompleted marks every book in the series as fully read for
// the user. Each book's progress is set to its media page count in one upsert
// batch; existing rows are overwritten.
func (svc *Service) MarkReadProgressCompleted(ctx context.Context, seriesID, userID int) error {
	seriesBooks, err := svc.bookService.ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(seriesBooks) == 0 {
		svc.publisher.Publish(events.ReadProgressSeriesChanged{SeriesID: seriesID, UserID: userID})
		return nil
	}

	bookIDs := make([]int, len(seriesBooks))
	for i, b := range seriesBooks {
		bookIDs[i] = b.ID
	}
	pageCounts, err := svc.bookService.PageCounts(ctx, bookIDs)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	progress := make([]*models.ReadProgress, len(seriesBooks))
	for i, b := range seriesBooks {
		progress[i] = &models.ReadProgress{
			BookID:    b.ID,
			UserID:    userID,
			Page:      pageCounts[b.ID],
			Completed: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	_, err = svc.db.
		NewInsert().
		Model(&progress).
		On("CONFLICT (book_id, user_id) DO UPDATE").
		Set("page = EXCLUDED.page").
		Set("completed = EXCLUDED.completed").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, p := range progress {
		svc.publisher.Publish(events.ReadProgressChanged{Progress: p})
	}
	svc.publisher.Publish(events.ReadProgressSeriesChanged{SeriesID: seriesID, UserID: userID})

	return nil
}

// DeleteReadProgress removes the user's read progress for every book in the
// series. Books without progress are skipped; the operation is a no-op when
// the user never read anything in the series.
func (svc *Service) DeleteReadProgress(ctx context.Context, seriesID, userID int) error {
	progress := []*models.ReadProgress{}
	err := svc.db.
		NewSelect().
		Model(&progress).
		Where("rp.user_id = ?", userID).
		Where("rp.book_id IN (SELECT id FROM books WHERE series_id = ?)", seriesID).
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(progress) > 0 {
		ids := make([]int, len(progress))
		for i, p := range progress {
			ids[i] = p.ID
		}
		_, err = svc.db.
			NewDelete().
			Model((*models.ReadProgress)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, p := range progress {
			svc.publisher.Publish(events.ReadProgressDeleted{Progress: p})
		}
	}

	svc.publisher.Publish(events.ReadProgressSeriesDeleted{SeriesID: seriesID, UserID: userID})

	return nil
}
