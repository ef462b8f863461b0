package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() database.Config {
	return database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: bookshelf.Tables{Users: "users", Books: "books"},
	}
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Ping(ctx))
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Type = "mysql"

	db, err := database.Connect(context.Background(), cfg)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTables(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig()
	cfg.Tables.Books = "books; drop table users"

	_, err := database.Connect(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("without migrate fails validation", func(t *testing.T) {
		_, err := database.Open(ctx, newTestConfig(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("with migrate returns working repos", func(t *testing.T) {
		db, err := database.Open(ctx, newTestConfig(), true)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		_, err = db.Users().GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, bookshelf.ErrNotFound)

		has, err := db.Books().HasFile(ctx, uuid.New(), "x.epub")
		require.NoError(t, err)
		assert.False(t, has)
	})
}
