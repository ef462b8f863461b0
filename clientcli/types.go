package clientcli

import (
	"github.com/google/uuid"

	"github.com/sagarc03/bookshelf"
)

// Book and Session are decoded straight from the server's JSON.
type (
	Book    = bookshelf.Book
	Session = bookshelf.Session
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// Title is only applied to single-file uploads; directory uploads take
	// titles from the file names.
	Title     string
	Author    string
	Category  string
	Recursive bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"localPath"`
	Book      *Book  `json:"book,omitempty"`
	Err       error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	ID        uuid.UUID
	LocalPath string // empty = server-supplied file name, "-" = stdout
}

// DownloadResult represents the result of downloading a book file.
type DownloadResult struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"fileName"`
	LocalPath   string    `json:"localPath"`
	ETag        string    `json:"etag"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"fileSize"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	IDs []uuid.UUID
}

// DeleteResult represents the result of deleting a single book.
type DeleteResult struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
	Err     error     `json:"-"` // nil on success
}

// ListOptions filters a list operation.
type ListOptions struct {
	Category string
	Search   string
}

// UpdateOptions is a partial update; nil fields are left unchanged.
type UpdateOptions struct {
	ID         uuid.UUID
	Title      *string
	Author     *string
	Category   *string
	IsFavorite *bool
}

func (o UpdateOptions) isEmpty() bool {
	return o.Title == nil && o.Author == nil && o.Category == nil && o.IsFavorite == nil
}

// bookResponse mirrors the {message, book} body of upload and update.
type bookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

// serverError mirrors the JSON error body.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
