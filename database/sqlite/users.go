// Package sqlite implements the bookshelf repositories using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sagarc03/bookshelf"
)

type userRepo struct {
	db        *sql.DB
	tableName string
}

func (r *userRepo) Create(ctx context.Context, u bookshelf.User) (bookshelf.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return bookshelf.User{}, fmt.Errorf("create user: %w", bookshelf.ErrConflict)
		}
		return bookshelf.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (bookshelf.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, email, password_hash, created_at FROM %s WHERE email = ?`, r.tableName)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return bookshelf.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (bookshelf.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, email, password_hash, created_at FROM %s WHERE id = ?`, r.tableName)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		return bookshelf.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (bookshelf.User, error) {
	var u bookshelf.User
	var idStr, createdAt string

	err := row.Scan(&idStr, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bookshelf.User{}, bookshelf.ErrNotFound
		}
		return bookshelf.User{}, err
	}

	if u.ID, err = uuid.Parse(idStr); err != nil {
		return bookshelf.User{}, fmt.Errorf("parse uuid: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return bookshelf.User{}, fmt.Errorf("parse created_at: %w", err)
	}

	return u, nil
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// timeLayout has a fixed-width fraction so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
