package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/internal"
)

const timestamptz = "timestamp with time zone"

var usersSchema = internal.Schema{
	"id":            {Type: "uuid"},
	"name":          {Type: "text"},
	"email":         {Type: "text"},
	"password_hash": {Type: "text"},
	"created_at":    {Type: timestamptz},
}

var booksSchema = internal.Schema{
	"id":                 {Type: "uuid"},
	"owner_id":           {Type: "uuid"},
	"title":              {Type: "text"},
	"author":             {Type: "text"},
	"file_name":          {Type: "text"},
	"original_file_name": {Type: "text"},
	"file_size":          {Type: "bigint"},
	"file_type":          {Type: "text"},
	"checksum":           {Type: "text"},
	"cover_image":        {Type: "text"},
	"category":           {Type: "text"},
	"is_favorite":        {Type: "boolean"},
	"uploaded_at":        {Type: timestamptz},
	"updated_at":         {Type: timestamptz},
}

// ValidateSchema checks that the users and books tables exist in the public
// schema with the columns this package reads and writes.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables bookshelf.Tables) error {
	checks := []struct {
		table  string
		schema internal.Schema
	}{
		{tables.Users, usersSchema},
		{tables.Books, booksSchema},
	}

	for _, c := range checks {
		if !bookshelf.IsValidTableName(c.table) {
			return fmt.Errorf("validate schema: invalid table name: %s", c.table)
		}

		got, err := tableColumns(ctx, pool, c.table)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}

		if err := internal.CheckSchema(c.table, c.schema, got); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (internal.Schema, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("lookup table: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("table %s does not exist", table)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	cols := internal.Schema{}
	for rows.Next() {
		var name, typ, nullable string
		if err := rows.Scan(&name, &typ, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = internal.Column{Type: typ, Nullable: nullable == "YES"}
	}

	return cols, rows.Err()
}
