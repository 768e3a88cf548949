package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BookMetadata holds the human-editable numbering for a book. Number is the
// displayed label and NumberSort the numeric sort key; each has its own lock
// flag that suppresses automatic renumbering of that field only.
type BookMetadata struct {
	bun.BaseModel `bun:"table:book_metadata,alias:bm"`

	ID             int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	BookID         int       `bun:",nullzero" json:"book_id"`
	Title          string    `bun:",nullzero" json:"title"`
	Number         string    `bun:",nullzero" json:"number"`
	NumberSort     float64   `json:"number_sort"`
	NumberLock     bool      `json:"number_lock"`
	NumberSortLock bool      `json:"number_sort_lock"`
}
