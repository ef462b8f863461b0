package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/internal"
)

type bookRepo struct {
	db        *sql.DB
	tableName string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *bookRepo) Create(ctx context.Context, b bookshelf.Book) (bookshelf.Book, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName, internal.BookColumns)

	_, err := r.db.ExecContext(ctx, query,
		b.ID.String(), b.OwnerID.String(), b.Title, b.Author, b.FileName, b.OriginalFileName, b.FileSize,
		b.FileType, b.Checksum, b.CoverImage, b.Category, b.IsFavorite, formatTime(b.UploadedAt), formatTime(b.UpdatedAt),
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
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ? AND owner_id = ?`, internal.BookColumns, r.tableName)

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id.String(), ownerID.String()))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) List(ctx context.Context, ownerID uuid.UUID, f bookshelf.BookFilter) ([]bookshelf.Book, error) {
	clause, filterArgs := internal.BookFilterClause(f, 2, internal.Question, unicodeLower)

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated, clause is built from constants
		`SELECT %s FROM %s WHERE owner_id = ?%s ORDER BY uploaded_at DESC, id DESC`,
		internal.BookColumns, r.tableName, clause)

	args := append([]any{ownerID.String()}, filterArgs...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET title = COALESCE(?, title),
			author = COALESCE(?, author),
			category = COALESCE(?, category),
			is_favorite = COALESCE(?, is_favorite),
			updated_at = ?
		WHERE id = ? AND owner_id = ?
		RETURNING %s`, r.tableName, internal.BookColumns)

	b, err := scanBook(r.db.QueryRowContext(ctx, query,
		internal.Nullable(p.Title), internal.Nullable(p.Author), internal.Nullable(p.Category), internal.Nullable(p.IsFavorite),
		formatTime(time.Now().Truncate(time.Microsecond)), id.String(), ownerID.String(),
	))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("update book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (bookshelf.Book, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE id = ? AND owner_id = ? RETURNING %s`, r.tableName, internal.BookColumns)

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id.String(), ownerID.String()))
	if err != nil {
		return bookshelf.Book{}, fmt.Errorf("delete book: %w", err)
	}
	return b, nil
}

func (r *bookRepo) HasFile(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT EXISTS (SELECT 1 FROM %s WHERE owner_id = ? AND file_name = ?)`, r.tableName)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID.String(), fileName).Scan(&exists); err != nil {
		return false, fmt.Errorf("has file: %w", err)
	}
	return exists, nil
}

func scanBook(row rowScanner) (bookshelf.Book, error) {
	var b bookshelf.Book
	var idStr, ownerStr, uploadedAt, updatedAt string

	err := row.Scan(
		&idStr, &ownerStr, &b.Title, &b.Author, &b.FileName, &b.OriginalFileName, &b.FileSize,
		&b.FileType, &b.Checksum, &b.CoverImage, &b.Category, &b.IsFavorite, &uploadedAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bookshelf.Book{}, bookshelf.ErrNotFound
		}
		return bookshelf.Book{}, err
	}

	if b.ID, err = uuid.Parse(idStr); err != nil {
		return bookshelf.Book{}, fmt.Errorf("parse id: %w", err)
	}
	if b.OwnerID, err = uuid.Parse(ownerStr); err != nil {
		return bookshelf.Book{}, fmt.Errorf("parse owner_id: %w", err)
	}
	if b.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return bookshelf.Book{}, fmt.Errorf("parse uploaded_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return bookshelf.Book{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return b, nil
}
