package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReadProgress tracks a user's position in a book. Identity is the
// (book_id, user_id) pair.
type ReadProgress struct {
	bun.BaseModel `bun:"table:read_progress,alias:rp"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	UserID    int       `bun:",nullzero" json:"user_id"`
	Page      int       `json:"page"`
	Completed bool      `json:"completed"`
}
