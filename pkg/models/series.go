package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID        int        `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
	LibraryID int        `bun:",nullzero" json:"library_id"`
	Library   *Library   `bun:"rel:belongs-to" json:"library,omitempty"`
	Name      string     `bun:",nullzero" json:"name"`
	BookCount int        `json:"book_count"`

	Metadata    *SeriesMetadata          `bun:"rel:has-one,join:id=series_id" json:"metadata,omitempty"`
	Aggregation *BookMetadataAggregation `bun:"rel:has-one,join:id=series_id" json:"aggregation,omitempty"`
	Books       []*Book                  `bun:"rel:has-many,join:id=series_id" json:"books,omitempty"`
	Thumbnails  []*SeriesThumbnail       `bun:"rel:has-many,join:id=series_id" json:"thumbnails,omitempty"`
}
