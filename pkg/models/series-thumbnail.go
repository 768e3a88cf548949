package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ThumbnailTypeSidecar  = "sidecar"
	ThumbnailTypeUploaded = "uploaded"
)

// SeriesThumbnail references an image file on disk. The file is not owned by
// the database row; housekeeping verifies existence and prunes stale entries.
// At most one thumbnail per series is selected at rest.
type SeriesThumbnail struct {
	bun.BaseModel `bun:"table:series_thumbnails,alias:st"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SeriesID  int       `bun:",nullzero" json:"series_id"`
	URL       string    `bun:",nullzero" json:"url"`
	Type      string    `bun:",nullzero,default:'sidecar'" json:"type"`
	Selected  bool      `json:"selected"`
}
