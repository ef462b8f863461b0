package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrTokenRequired  = errors.New("not logged in: run 'bookshelf-cli login' or set BOOKSHELF_TOKEN")
	ErrConfigRequired = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoIDs       = errors.New("no book ids provided")
	ErrEmptyPath   = errors.New("path is required")
	ErrEmptyUpdate = errors.New("nothing to update")
)
