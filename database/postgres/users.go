// Package postgres implements the bookshelf repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bookshelf"
)

const uniqueViolation = "23505"

type userRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *userRepo) Create(ctx context.Context, u bookshelf.User) (bookshelf.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tableName)

	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return bookshelf.User{}, fmt.Errorf("create user: %w", bookshelf.ErrConflict)
		}
		return bookshelf.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (bookshelf.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at
		FROM %s
		WHERE email = $1
	`, r.tableName)

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return bookshelf.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (bookshelf.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at
		FROM %s
		WHERE id = $1
	`, r.tableName)

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return bookshelf.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (bookshelf.User, error) {
	var u bookshelf.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookshelf.User{}, bookshelf.ErrNotFound
		}
		return bookshelf.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
