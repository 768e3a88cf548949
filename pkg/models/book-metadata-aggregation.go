package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BookMetadataAggregation is a denormalized per-series rollup of book metadata
// fields. An empty row is created alongside the series and recomputed by
// background refreshes.
type BookMetadataAggregation struct {
	bun.BaseModel `bun:"table:book_metadata_aggregations,alias:bma"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SeriesID  int       `bun:",nullzero" json:"series_id"`
	Summary   *string   `json:"summary,omitempty"`
}
