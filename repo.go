package bookshelf

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// UserRepo persists user accounts.
//
// Implementations must enforce email uniqueness and report a duplicate as
// ErrConflict. Lookups that match nothing return ErrNotFound.
type UserRepo interface {
	// Create inserts u as given. ID and CreatedAt are set by the caller.
	Create(ctx context.Context, u User) (User, error)

	// GetByEmail returns the user whose email matches exactly.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// BookRepo persists book metadata. Every method except Create and HasFile is
// scoped to an owner: a row belonging to another owner behaves exactly as a
// missing row and yields ErrNotFound.
type BookRepo interface {
	// Create inserts b as given. ID and timestamps are set by the caller.
	Create(ctx context.Context, b Book) (Book, error)

	// Get returns the book with id owned by ownerID.
	Get(ctx context.Context, ownerID, id uuid.UUID) (Book, error)

	// List returns the owner's books matching f, newest upload first.
	//
	// Category "" or "all" applies no category restriction, "favorites"
	// restricts to favorite books, anything else is an exact category match.
	// Search is a case-insensitive substring match on title or author.
	List(ctx context.Context, ownerID uuid.UUID, f BookFilter) ([]Book, error)

	// Update applies the non-nil fields of p and returns the updated row.
	// Empty string fields must already be normalized to nil by the caller.
	Update(ctx context.Context, ownerID, id uuid.UUID, p BookPatch) (Book, error)

	// Delete removes the row and returns it as it was before deletion.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (Book, error)

	// HasFile reports whether any book of ownerID references the stored file name.
	HasFile(ctx context.Context, ownerID uuid.UUID, fileName string) (bool, error)
}

// FileStorage defines the interface for physical file storage operations.
// Paths are slash-separated and relative to the storage root.
//
// All methods accept a context for cancellation. Implementations should
// respect cancellation during long-running transfers.
type FileStorage interface {
	// Get opens the file at path for reading. The caller closes the reader.
	// Returns ErrNotFound if the file does not exist.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path, creating parent directories as needed.
	// The write must be atomic (temp file then rename) and must leave nothing
	// behind on failure. When limit is positive and content holds more than
	// limit bytes, Write fails with ErrFileTooLarge.
	Write(ctx context.Context, path string, content io.Reader, limit int64) (SaveResult, error)

	// Delete removes the file at path. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, path string) error

	// List walks the whole storage tree and returns every regular file.
	// In-flight temp files are skipped.
	List(ctx context.Context) ([]ObjectEntry, error)
}

// TokenService issues and verifies signed identity tokens.
type TokenService interface {
	Issue(userID uuid.UUID) (string, error)
	// Verify returns the subject of a valid token or an error wrapping ErrTokenInvalid.
	Verify(token string) (uuid.UUID, error)
}
