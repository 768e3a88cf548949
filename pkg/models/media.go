package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaStatusUnknown = "unknown"
	MediaStatusReady   = "ready"
	MediaStatusError   = "error"
)

type Media struct {
	bun.BaseModel `bun:"table:media,alias:m"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	Status    string    `bun:",nullzero,default:'unknown'" json:"status"`
	PageCount int       `json:"page_count"`
	CoverPath *string   `json:"cover_path,omitempty"`
}
