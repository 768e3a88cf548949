package jobs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hondanabooks/hondana/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestRequestMetadataRefresh(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.RequestMetadataRefresh(ctx, 42, []string{MetadataFieldNumber, MetadataFieldNumberSort})
	require.NoError(t, err)

	jobs, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{JobStatusPending}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, JobTypeRefreshBookMetadata, jobs[0].Type)
	data, ok := jobs[0].DataParsed.(*JobRefreshBookMetadataData)
	require.True(t, ok)
	assert.Equal(t, 42, data.BookID)
	assert.Equal(t, []string{MetadataFieldNumber, MetadataFieldNumberSort}, data.Fields)
}

func TestListJobsExcludesProcess(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	mine := "proc-a"
	require.NoError(t, svc.RequestMetadataRefresh(ctx, 1, []string{MetadataFieldNumber}))

	jobs, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{JobStatusPending}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// Claim it for proc-a; proc-a should no longer see it.
	jobs[0].Status = JobStatusInProgress
	jobs[0].ProcessID = &mine
	require.NoError(t, svc.UpdateJob(ctx, jobs[0], UpdateJobOptions{Columns: []string{"status", "process_id"}}))

	remaining, err := svc.ListJobs(ctx, ListJobsOptions{
		Statuses:           []string{JobStatusPending, JobStatusInProgress},
		ProcessIDToExclude: &mine,
	})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
