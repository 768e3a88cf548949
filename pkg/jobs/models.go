package jobs

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeRefreshBookMetadata = "refresh_book_metadata"
)

// Metadata fields a refresh job may be scoped to.
const (
	MetadataFieldNumber     = "number"
	MetadataFieldNumberSort = "number_sort"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,autoincrement" json:"id"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Progress   int         `json:"progress"`
	ProcessID  *string     `json:"process_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeRefreshBookMetadata:
		job.DataParsed = &JobRefreshBookMetadataData{}
	default:
		return nil
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// JobRefreshBookMetadataData scopes a metadata refresh to specific fields so
// a later import cannot clobber values computed by renumbering.
type JobRefreshBookMetadataData struct {
	BookID int      `json:"book_id"`
	Fields []string `json:"fields"`
}
