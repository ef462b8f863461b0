package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/internal"
	"modernc.org/sqlite"
)

// unicodeLower is registered on every connection; the built-in LOWER only
// folds ASCII.
const unicodeLower internal.Lower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(string(unicodeLower), 1, lowerText)
}

func lowerText(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables bookshelf.Tables
}

// Connect opens a SQLite database.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables bookshelf.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// every connection to :memory: is a separate database
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Users returns the user repository.
func (d *database) Users() bookshelf.UserRepo {
	return &userRepo{db: d.db, tableName: quoteIdentifier(d.tables.Users)}
}

// Books returns the book repository.
func (d *database) Books() bookshelf.BookRepo {
	return &bookRepo{db: d.db, tableName: quoteIdentifier(d.tables.Books)}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
