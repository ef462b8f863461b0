package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sagarc03/bookshelf"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; more specific errors come first.
var errorMappings = []errorMapping{
	{bookshelf.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large", "File too large"},
	{bookshelf.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type", "Unsupported file type"},
	{errNoFile, http.StatusBadRequest, "no_file", "No file uploaded"},
	{bookshelf.ErrInvalidInput, http.StatusBadRequest, "invalid_request", "Invalid request"},
	{bookshelf.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials", "Invalid credentials"},
	{bookshelf.ErrTokenInvalid, http.StatusUnauthorized, "unauthorized", "Invalid token"},
	{bookshelf.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication required"},
	{bookshelf.ErrBlobMissing, http.StatusNotFound, "file_not_found", "File not found"},
	{bookshelf.ErrNotFound, http.StatusNotFound, "not_found", "Book not found"},
	{bookshelf.ErrConflict, http.StatusConflict, "conflict", "Resource already exists"},
}

// HandleError writes the response for err and logs it with the request id.
// Unknown errors become a 500 without internal details.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError || errors.Is(err, bookshelf.ErrBlobMissing) {
				logRequestError(r, "request error", err)
			} else {
				slog.DebugContext(r.Context(), "request rejected", "error", err, "request_id", middleware.GetReqID(r.Context()))
			}
			WriteError(w, m.status, m.code, m.message)
			return
		}
	}

	logRequestError(r, "request error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Server error")
}

func logRequestError(r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
