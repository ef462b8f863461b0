package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
)

// multipartOverhead is the allowance for form fields and part headers on top
// of the file size ceiling.
const multipartOverhead = 1 << 20

// Accounts registers, authenticates and resolves users.
type Accounts interface {
	Register(ctx context.Context, r bookshelf.Registration) (bookshelf.Session, error)
	Authenticate(ctx context.Context, email, password string) (bookshelf.Session, error)
	TokenVerifier
}

// Catalog manages a user's books.
type Catalog interface {
	Upload(ctx context.Context, ownerID uuid.UUID, meta bookshelf.BookMetadata, originalName string, content io.Reader) (bookshelf.Book, error)
	List(ctx context.Context, ownerID uuid.UUID, f bookshelf.BookFilter) ([]bookshelf.Book, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (bookshelf.Book, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, p bookshelf.BookPatch) (bookshelf.Book, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Download(ctx context.Context, ownerID, id uuid.UUID) (bookshelf.Book, io.ReadSeekCloser, error)
	MaxFileSize() int64
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Health is pinged by /healthz. Nil always reports healthy.
	Health Pinger
}

// Handler serves the bookshelf REST API.
type Handler struct {
	config   HandlerConfig
	accounts Accounts
	catalog  Catalog
	validate *validator.Validate
}

// NewHandler creates a new Handler with the given configuration and services.
func NewHandler(config *HandlerConfig, accounts Accounts, catalog Catalog) *Handler {
	return &Handler{
		config:   *config,
		accounts: accounts,
		catalog:  catalog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router returns an http.Handler with every route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(writeRouteNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Route("/books", func(r chi.Router) {
			r.Use(AuthMiddleware(h.accounts))

			r.Get("/", h.handleList)
			r.Post("/upload", h.handleUpload)
			r.Get("/{id}", h.handleGet)
			r.Get("/{id}/download", h.handleDownload)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})

	return r
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateBookRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=500"`
	Author     *string `json:"author" validate:"omitempty,max=500"`
	Category   *string `json:"category" validate:"omitempty,max=100"`
	IsFavorite *bool   `json:"isFavorite"`
}

type bookResponse struct {
	Message string         `json:"message"`
	Book    bookshelf.Book `json:"book"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON decodes a single JSON object into dst and validates it.
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %w", bookshelf.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after body", bookshelf.ErrInvalidInput)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", bookshelf.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.config.Health != nil {
		if err := h.config.Health.Ping(r.Context()); err != nil {
			logRequestError(r, "health check failed", err)
			WriteError(w, http.StatusServiceUnavailable, "unavailable", "Service unavailable")
			return
		}
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	session, err := h.accounts.Register(r.Context(), bookshelf.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, bookshelf.ErrConflict) {
			WriteError(w, http.StatusBadRequest, "user_exists", "User already exists")
			return
		}
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	session, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	books, err := h.catalog.List(r.Context(), user.ID, bookshelf.BookFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, books)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	maxSize := h.catalog.MaxFileSize()

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(w, r, fmt.Errorf("parse upload: %w", bookshelf.ErrFileTooLarge))
			return
		}
		HandleError(w, r, fmt.Errorf("%w: parse upload: %w", bookshelf.ErrInvalidInput, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := uploadedFile(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxSize {
		HandleError(w, r, fmt.Errorf("upload %s: %w", header.Filename, bookshelf.ErrFileTooLarge))
		return
	}

	book, err := h.catalog.Upload(r.Context(), user.ID, bookshelf.BookMetadata{
		Title:    r.FormValue("title"),
		Author:   r.FormValue("author"),
		Category: r.FormValue("category"),
	}, header.Filename, file)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, bookResponse{Message: "Book uploaded successfully", Book: book})
}

// uploadedFile returns the file part named "ebook", or "file" when absent.
func uploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range []string{"ebook", "file"} {
		file, header, err := r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("%w: read %s: %w", bookshelf.ErrInvalidInput, field, err)
		}
	}
	return nil, nil, errNoFile
}

var errNoFile = fmt.Errorf("%w: no file uploaded", bookshelf.ErrInvalidInput)

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	book, err := h.catalog.Get(r.Context(), UserFromContext(r.Context()).ID, id)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, book)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	book, content, err := h.catalog.Download(r.Context(), UserFromContext(r.Context()).ID, id)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Disposition", contentDisposition(book.OriginalFileName))
	w.Header().Set("Content-Type", contentType(book.FileType))
	if book.Checksum != "" {
		w.Header().Set("ETag", `"`+book.Checksum+`"`)
	}

	// whole files only
	r.Header.Del("Range")
	r.Header.Del("If-Range")
	http.ServeContent(w, r, book.OriginalFileName, book.UploadedAt, content)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	var req updateBookRequest
	if err := h.decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	book, err := h.catalog.Update(r.Context(), UserFromContext(r.Context()).ID, id, bookshelf.BookPatch{
		Title:      req.Title,
		Author:     req.Author,
		Category:   req.Category,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, bookResponse{Message: "Book updated successfully", Book: book})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), UserFromContext(r.Context()).ID, id); err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, messageResponse{Message: "Book deleted successfully"})
}

// bookID parses the {id} URL parameter. A malformed id is answered as a
// missing book.
func bookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, "not_found", "Book not found")
		return uuid.Nil, false
	}
	return id, true
}

func contentDisposition(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

var fileContentTypes = map[string]string{
	"epub": "application/epub+zip",
	"pdf":  "application/pdf",
	"mobi": "application/x-mobipocket-ebook",
	"azw":  "application/vnd.amazon.ebook",
	"txt":  "text/plain; charset=utf-8",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func contentType(fileType string) string {
	if ct, ok := fileContentTypes[strings.ToLower(fileType)]; ok {
		return ct
	}
	return "application/octet-stream"
}
