package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/bookshelf"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

// getTableMigrations returns all table migrations in dependency order.
func getTableMigrations(tables bookshelf.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Users,
			Up:        createUsersTable(tables.Users),
			Down:      dropTable(tables.Users),
		},
		{
			TableName: tables.Books,
			Up:        createBooksTable(tables.Books, tables.Users),
			Down:      dropTable(tables.Books),
		},
	}
}

func Migrate(ctx context.Context, db *sql.DB, tables bookshelf.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables bookshelf.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createUsersTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL
			)
		`, quoteIdentifier(tableName))

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		return nil
	}
}

func createBooksTable(tableName, usersTable string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		indexOwnerUploaded := quoteIdentifier(fmt.Sprintf("idx_%s_owner_uploaded", tableName))

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT NOT NULL PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				author TEXT NOT NULL,
				file_name TEXT NOT NULL,
				original_file_name TEXT NOT NULL,
				file_size INTEGER NOT NULL,
				file_type TEXT NOT NULL,
				checksum TEXT NOT NULL,
				cover_image TEXT NOT NULL,
				category TEXT NOT NULL,
				is_favorite INTEGER NOT NULL DEFAULT 0,
				uploaded_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (owner_id, file_name)
			)
		`, quotedTable, quoteIdentifier(usersTable))

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s (owner_id, uploaded_at DESC)
		`, indexOwnerUploaded, quotedTable)

		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index owner_uploaded: %w", err)
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName))

		_, err := db.ExecContext(ctx, dropSQL)
		return err
	}
}
