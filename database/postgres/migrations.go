package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bookshelf"
)

// Migrate creates the users table and then the books table referencing it.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables bookshelf.Tables) error {
	if err := createUsersTable(ctx, pool, tables.Users); err != nil {
		return err
	}
	return createBooksTable(ctx, pool, tables.Books, tables.Users)
}

func createUsersTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, pgx.Identifier{tableName}.Sanitize())

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func createBooksTable(ctx context.Context, pool *pgxpool.Pool, tableName, usersTable string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexOwnerUploaded := pgx.Identifier{fmt.Sprintf("idx_%s_owner_uploaded", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			file_name TEXT NOT NULL,
			original_file_name TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			file_type TEXT NOT NULL,
			checksum TEXT NOT NULL,
			cover_image TEXT NOT NULL,
			category TEXT NOT NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (owner_id, file_name)
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (owner_id, uploaded_at DESC, id DESC);
	`,
		quotedTable, pgx.Identifier{usersTable}.Sanitize(),
		indexOwnerUploaded, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}
