package bookshelf

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAuthor     = "Unknown"
	DefaultCategory   = "uncategorized"
	DefaultCoverImage = "/api/placeholder/150/180"

	// DefaultMaxFileSize is the upload ceiling in bytes (50 MiB).
	DefaultMaxFileSize int64 = 50 * 1024 * 1024
)

// Category filter values with special meaning in BookFilter.
const (
	CategoryAll       = "all"
	CategoryFavorites = "favorites"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Book struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"userId"`
	Title            string    `json:"title"`
	Author           string    `json:"author"`
	FileName         string    `json:"fileName"`
	OriginalFileName string    `json:"originalFileName"`
	FileSize         int64     `json:"fileSize"`
	FileType         string    `json:"fileType"`
	Checksum         string    `json:"checksum"`
	CoverImage       string    `json:"coverImage"`
	Category         string    `json:"category"`
	IsFavorite       bool      `json:"isFavorite"`
	UploadedAt       time.Time `json:"uploadDate"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BookMetadata carries the optional descriptive fields supplied with an upload.
// Empty fields fall back to defaults.
type BookMetadata struct {
	Title    string
	Author   string
	Category string
}

// BookPatch is a partial update. Nil fields and empty strings are left unchanged;
// IsFavorite is applied whenever it is non-nil.
type BookPatch struct {
	Title      *string
	Author     *string
	Category   *string
	IsFavorite *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Category == nil && p.IsFavorite == nil
}

type BookFilter struct {
	Category string
	Search   string
}

// StoredFile describes a blob persisted by the BlobStore.
type StoredFile struct {
	Name         string
	OriginalName string
	FileType     string
	Size         int64
	Checksum     string
}

type ObjectEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type SaveResult struct {
	BytesWritten int64
	Checksum     string
}

type Registration struct {
	Name     string
	Email    string
	Password string
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Tables holds configurable table names for the metadata store.
type Tables struct {
	Users string `mapstructure:"users" validate:"required"`
	Books string `mapstructure:"books" validate:"required"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set, valid and distinct.
func (t Tables) Validate() error {
	names := []struct {
		kind string
		name string
	}{
		{"users", t.Users},
		{"books", t.Books},
	}

	for _, n := range names {
		if n.name == "" {
			return fmt.Errorf("validate tables: %s table name cannot be empty", n.kind)
		}
		if !IsValidTableName(n.name) {
			return fmt.Errorf("validate tables: invalid %s table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", n.kind, n.name)
		}
	}

	if t.Users == t.Books {
		return errors.New("validate tables: users and books tables must differ")
	}

	return nil
}
