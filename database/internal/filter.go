// Package internal holds query building and schema checks shared by the SQL backends.
package internal

import (
	"strconv"
	"strings"

	"github.com/sagarc03/bookshelf"
)

// Placeholder renders the n-th (1-based) bind parameter of a statement.
type Placeholder func(n int) string

// Dollar renders PostgreSQL placeholders ($1, $2, ...).
func Dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

// Question renders SQLite placeholders (?).
func Question(int) string {
	return "?"
}

// Lower is the SQL function a backend uses to lowercase text for search.
// It must fold case with the same Unicode rules as strings.ToLower.
type Lower string

// PostgresLower folds case by the database collation, which is Unicode aware.
const PostgresLower Lower = "LOWER"

// BookColumns is the column list every book query selects, in scan order.
const BookColumns = `id, owner_id, title, author, file_name, original_file_name, file_size,
	file_type, checksum, cover_image, category, is_favorite, uploaded_at, updated_at`

// BookFilterClause returns the conditions f adds to an owner-scoped book
// query, each prefixed with " AND ", and their bind values. Placeholders are
// numbered from next.
//
// Category "" and "all" add nothing, "favorites" restricts to favorite books
// and any other value is an exact match. Search is a case-insensitive
// substring match on title or author with LIKE metacharacters escaped; the
// term is used as given, so surrounding spaces are part of it.
func BookFilterClause(f bookshelf.BookFilter, next int, ph Placeholder, lower Lower) (string, []any) {
	var sb strings.Builder
	var args []any

	switch category := strings.TrimSpace(f.Category); category {
	case "", bookshelf.CategoryAll:
	case bookshelf.CategoryFavorites:
		sb.WriteString(" AND is_favorite = " + ph(next))
		args = append(args, true)
		next++
	default:
		sb.WriteString(" AND category = " + ph(next))
		args = append(args, category)
		next++
	}

	if f.Search != "" {
		pattern := "%" + bookshelf.EscapeLikePattern(strings.ToLower(f.Search)) + "%"
		fn := string(lower)
		sb.WriteString(" AND (" + fn + "(title) LIKE " + ph(next) + ` ESCAPE '\'` +
			" OR " + fn + "(author) LIKE " + ph(next+1) + ` ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	return sb.String(), args
}

// Nullable returns *p, or nil when p is nil, so patch fields bind as NULL.
func Nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
