package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/internal"
)

type bookRepo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *bookRepo) Create(ctx context.Context, b bookshelf.Book) (bookshelf.Book, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.tableName, internal.BookColumns)

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.OwnerID, b.Title, b.Author, b.FileName, b.OriginalFileName, b.FileSize,
		b.FileType, b.Checksum, b.CoverImage, b.Category, b.IsFavorite, b.UploadedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return bookshelf.Book{}, fmt.Errorf("create book: %w", bookshelf.ErrConflict)
		}
		return bookshelf.Book{}, fmt.Errorf("create book: %w", err)
	}

	return b, nil
}

func (r *bookRepo) Get(ctx context.Context, ownerID, id uuid.UUID) (bookshelf.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, internal.BookColumns, r.tableName)

	b, err := scanBook(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) List(ctx context.Context, ownerID uuid.UUID, f bookshelf.BookFilter) ([]bookshelf.Book, error) {
	clause, filterArgs := internal.BookFilterClause(f, 2, internal.Dollar, internal.PostgresLower)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1%s
		ORDER BY uploaded_at DESC, id DESC
	`, internal.BookColumns, r.tableName, clause)

	args := append([]any{ownerID}, filterArgs...)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []bookshelf.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("list books: scan: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: rows: %w", err)
	}

	return books, nil
}

func (r *bookRepo) Update(ctx context.Context, ownerID, id uuid.UUID, p bookshelf.BookPatch) (bookshelf.Book, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($1, title),
			author = COALESCE($2, author),
			category = COALESCE($3, category),
			is_favorite = COALESCE($4, is_favorite),
			updated_at = date_trunc('microseconds', NOW())
		WHERE id = $5 AND owner_id = $6
		RETURNING %s
	`, r.tableName, internal.BookColumns)

	b, err := scanBook(r.pool.QueryRow(ctx, query,
		internal.Nullable(p.Title), internal.Nullable(p.Author), internal.Nullable(p.Category), internal.Nullable(p.IsFavorite),
		id, ownerID,
	))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("update book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (bookshelf.Book, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
		RETURNING %s
	`, r.tableName, internal.BookColumns)

	b, err := scanBook(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("delete book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) HasFile(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE owner_id = $1 AND file_name = $2)
	`, r.tableName)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, ownerID, fileName).Scan(&exists); err != nil {
		return false, fmt.Errorf("has file: %w", err)
	}
	return exists, nil
}

func scanBook(row pgx.Row) (bookshelf.Book, error) {
	var b bookshelf.Book
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.FileName, &b.OriginalFileName, &b.FileSize,
		&b.FileType, &b.Checksum, &b.CoverImage, &b.Category, &b.IsFavorite, &b.UploadedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookshelf.Book{}, bookshelf.ErrNotFound
		}
		return bookshelf.Book{}, err
	}
	b.UploadedAt = b.UploadedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}
