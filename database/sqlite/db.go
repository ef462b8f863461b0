package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/internal"
)

var usersSchema = internal.Schema{
	"id":            {Type: "text"},
	"name":          {Type: "text"},
	"email":         {Type: "text"},
	"password_hash": {Type: "text"},
	"created_at":    {Type: "text"},
}

var booksSchema = internal.Schema{
	"id":                 {Type: "text"},
	"owner_id":           {Type: "text"},
	"title":              {Type: "text"},
	"author":             {Type: "text"},
	"file_name":          {Type: "text"},
	"original_file_name": {Type: "text"},
	"file_size":          {Type: "integer"},
	"file_type":          {Type: "text"},
	"checksum":           {Type: "text"},
	"cover_image":        {Type: "text"},
	"category":           {Type: "text"},
	"is_favorite":        {Type: "integer"},
	"uploaded_at":        {Type: "text"},
	"updated_at":         {Type: "text"},
}

// ValidateSchema checks that the users and books tables exist with the
// columns this package reads and writes.
func ValidateSchema(ctx context.Context, db *sql.DB, tables bookshelf.Tables) error {
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

		got, err := tableColumns(ctx, db, c.table)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", c.table, err)
		}

		if err := internal.CheckSchema(c.table, c.schema, got); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}

// tableColumns reads a table's layout with PRAGMA table_info.
func tableColumns(ctx context.Context, db *sql.DB, table string) (internal.Schema, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup table: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := internal.Schema{}
	for rows.Next() {
		var (
			cid, notNull, pk int
			col, typ         string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &col, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[col] = internal.Column{Type: typ, Nullable: notNull == 0}
	}

	return cols, rows.Err()
}
