// Package events defines the domain events emitted by lifecycle operations
// and an in-process bus that fans them out to subscribers.
package events

import "github.com/hondanabooks/hondana/pkg/models"

// Event is a domain event. Implementations are plain payload structs.
type Event interface {
	EventType() string
}

// Publisher is the outbound side of the bus. Lifecycle services publish only
// after their transaction has committed; a publish failure never undoes a
// committed write.
type Publisher interface {
	Publish(event Event)
}

type SeriesAdded struct {
	Series *models.Series
}

func (SeriesAdded) EventType() string { return "series_added" }

type SeriesUpdated struct {
	Series *models.Series
}

func (SeriesUpdated) EventType() string { return "series_updated" }

type SeriesDeleted struct {
	Series *models.Series
}

func (SeriesDeleted) EventType() string { return "series_deleted" }

type BookAdded struct {
	Book *models.Book
}

func (BookAdded) EventType() string { return "book_added" }

type ReadProgressChanged struct {
	Progress *models.ReadProgress
}

func (ReadProgressChanged) EventType() string { return "read_progress_changed" }

type ReadProgressDeleted struct {
	Progress *models.ReadProgress
}

func (ReadProgressDeleted) EventType() string { return "read_progress_deleted" }

type ReadProgressSeriesChanged struct {
	SeriesID int
	UserID   int
}

func (ReadProgressSeriesChanged) EventType() string { return "read_progress_series_changed" }

type ReadProgressSeriesDeleted struct {
	SeriesID int
	UserID   int
}

func (ReadProgressSeriesDeleted) EventType() string { return "read_progress_series_deleted" }

type ThumbnailSeriesAdded struct {
	Thumbnail *models.SeriesThumbnail
}

func (ThumbnailSeriesAdded) EventType() string { return "thumbnail_series_added" }
