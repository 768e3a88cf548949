package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SeriesMetadata struct {
	bun.BaseModel `bun:"table:series_metadata,alias:sm"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SeriesID  int       `bun:",nullzero" json:"series_id"`
	Title     string    `bun:",nullzero" json:"title"`
	TitleSort string    `bun:",nullzero" json:"title_sort"`
}
