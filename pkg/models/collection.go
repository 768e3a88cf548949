package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Ordered   bool      `json:"ordered"`

	Series []*CollectionSeries `bun:"rel:has-many,join:id=collection_id" json:"series,omitempty"`
}

// CollectionSeries is a membership row; collections reference series but do
// not own them.
type CollectionSeries struct {
	bun.BaseModel `bun:"table:collection_series,alias:cs"`

	ID           int `bun:",pk,autoincrement" json:"id"`
	CollectionID int `bun:",nullzero" json:"collection_id"`
	SeriesID     int `bun:",nullzero" json:"series_id"`
	Number       int `json:"number"`
}
