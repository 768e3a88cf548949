package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int        `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
	LibraryID int        `bun:",nullzero" json:"library_id"`
	Library   *Library   `bun:"rel:belongs-to" json:"library,omitempty"`
	SeriesID  int        `bun:",nullzero" json:"series_id"`
	Series    *Series    `bun:"rel:belongs-to" json:"series,omitempty"`
	Name      string     `bun:",nullzero" json:"name"`
	Number    int        `json:"number"`

	Metadata *BookMetadata `bun:"rel:has-one,join:id=book_id" json:"metadata,omitempty"`
	Media    *Media        `bun:"rel:has-one,join:id=book_id" json:"media,omitempty"`
}
