package bookshelf

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found or is not owned by the caller
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when authentication fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict is returned when a unique constraint would be violated
	ErrConflict = errors.New("already exists")
	// ErrStorage is returned when the blob store fails unexpectedly
	ErrStorage = errors.New("storage error")
	// ErrBlobMissing marks a book whose metadata exists but whose file does not
	ErrBlobMissing = errors.New("blob missing")

	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	ErrFileTooLarge        = fmt.Errorf("%w: file too large", ErrInvalidInput)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrTokenInvalid       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
)
