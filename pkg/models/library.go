package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Series cover policy constants. They govern which book's cover is used for a
// series that has no selected thumbnail of its own.
const (
	SeriesCoverFirst            = "first"
	SeriesCoverFirstUnreadFirst = "first_unread_or_first"
	SeriesCoverFirstUnreadLast  = "first_unread_or_last"
	SeriesCoverLast             = "last"
)

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l"`

	ID          int        `bun:",pk,autoincrement" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
	Name        string     `bun:",nullzero" json:"name"`
	SeriesCover string     `bun:",nullzero,default:'first'" json:"series_cover"`
}
