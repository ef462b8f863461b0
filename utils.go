package bookshelf

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]struct{}{
	"epub": {},
	"pdf":  {},
	"mobi": {},
	"azw":  {},
	"txt":  {},
	"doc":  {},
	"docx": {},
}

// AllowedFileTypes returns the accepted e-book extensions without the leading dot.
func AllowedFileTypes() []string {
	return []string{"epub", "pdf", "mobi", "azw", "txt", "doc", "docx"}
}

// FileType returns the lowercase extension of name without the leading dot.
func FileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsAllowedFileType reports whether the extension of name is an accepted e-book type.
// The comparison is case-insensitive.
func IsAllowedFileType(name string) bool {
	_, ok := allowedExtensions[FileType(name)]
	return ok
}

// TitleFromFileName strips the directory and the final extension from name.
func TitleFromFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsValidStoredName reports whether name has the shape of a generated blob name:
// a UUID followed by an accepted lowercase extension.
func IsValidStoredName(name string) bool {
	stem, ext, ok := strings.Cut(name, ".")
	if !ok {
		return false
	}
	if _, allowed := allowedExtensions[ext]; !allowed {
		return false
	}
	id, err := uuid.Parse(stem)
	return err == nil && id.String() == stem
}

// EscapeLikePattern escapes special LIKE characters (%, _, \) to prevent SQL injection.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}
