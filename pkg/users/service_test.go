package users

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
	"golang.org/x/crypto/bcrypt"
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

func TestCreate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{Username: "reader", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))

	// Duplicate usernames are rejected case-insensitively.
	_, err = svc.Create(ctx, CreateUserOptions{Username: "READER", Password: "another password"})
	require.Error(t, err)
}

func TestSetActive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{Username: "reader", Password: "correct horse battery"})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, user.ID, false))

	reloaded, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}
