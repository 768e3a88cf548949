package worker

import (
	"context"
	"sort"
	"strconv"

	"github.com/hondanabooks/hondana/pkg/books"
	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/hondanabooks/hondana/pkg/jobs"
	"github.com/hondanabooks/hondana/pkg/natsort"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessRefreshBookMetadataJob recomputes a book's numbering from its rank in
// the series and writes back only the fields the job is scoped to. Locked
// fields are left alone even when scoped.
func (w *Worker) ProcessRefreshBookMetadataJob(ctx context.Context, job *jobs.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*jobs.JobRefreshBookMetadataData)
	if !ok {
		return errors.New("unexpected refresh job data")
	}

	book, err := w.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &data.BookID})
	if err != nil {
		var e *errcodes.Error
		if errors.As(err, &e) && e.Code == "not_found" {
			// The book went away between enqueue and pickup.
			log.Info("book gone, skipping refresh", logger.Data{"book_id": data.BookID})
			return nil
		}
		return errors.WithStack(err)
	}
	if book.Metadata == nil {
		return nil
	}

	siblings, err := w.bookService.ListBooks(ctx, books.ListBooksOptions{SeriesID: &book.SeriesID})
	if err != nil {
		return errors.WithStack(err)
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return natsort.Less(siblings[i].Name, siblings[j].Name)
	})

	rank := 0
	for i, sibling := range siblings {
		if sibling.ID == book.ID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return nil
	}

	metadata := book.Metadata
	columns := []string{}
	for _, field := range data.Fields {
		switch field {
		case jobs.MetadataFieldNumber:
			if !metadata.NumberLock && metadata.Number != strconv.Itoa(rank) {
				metadata.Number = strconv.Itoa(rank)
				columns = append(columns, "number")
			}
		case jobs.MetadataFieldNumberSort:
			if !metadata.NumberSortLock && metadata.NumberSort != float64(rank) {
				metadata.NumberSort = float64(rank)
				columns = append(columns, "number_sort")
			}
		}
	}
	if len(columns) == 0 {
		return nil
	}

	log.Info("refreshing book numbering", logger.Data{"book_id": book.ID, "rank": rank})
	return w.bookService.UpdateBookMetadata(ctx, metadata, books.UpdateBookMetadataOptions{Columns: columns})
}
