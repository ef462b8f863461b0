package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/bookshelf"
)

// DefaultTimeout is the default HTTP client timeout. Uploads and downloads
// of large books are bounded by the context instead.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a bookshelf server.
type Client struct {
	config     *Config
	httpClient *http.Client
	// transferClient has no overall timeout for streaming file bodies.
	transferClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		c.transferClient = client
	}
}

// WithTimeout sets the timeout for non-transfer requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			Token:    cfg.Token,
		},
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		transferClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetToken replaces the bearer token used for book requests.
func (c *Client) SetToken(token string) {
	c.config.Token = token
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", false, body, &session, http.StatusCreated); err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}
	return session, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", false, body, &session, http.StatusOK); err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

// Health reports whether the server answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/healthz", false, nil, nil, http.StatusOK)
}

// Upload uploads a book file, or every supported file below a directory
// when opts.Recursive is set.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}
	if c.config.Token == "" {
		return nil, ErrTokenRequired
	}

	if opts.Recursive {
		return c.uploadRecursive(ctx, opts)
	}

	book, err := c.uploadSingle(ctx, opts.LocalPath, opts)
	if err != nil {
		return nil, err
	}
	return []UploadResult{{LocalPath: opts.LocalPath, Book: &book}}, nil
}

// uploadRecursive walks a directory and uploads every supported file.
// Per-file failures are collected rather than stopping the walk.
func (c *Client) uploadRecursive(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		book, uploadErr := c.uploadSingle(ctx, opts.LocalPath, opts)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{{LocalPath: opts.LocalPath, Book: &book}}, nil
	}

	// titles come from the file names
	opts.Title = ""

	var results []UploadResult
	walkErr := filepath.WalkDir(opts.LocalPath, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !bookshelf.IsAllowedFileType(d.Name()) {
			return nil
		}

		result := UploadResult{LocalPath: path}
		book, uploadErr := c.uploadSingle(ctx, path, opts)
		if uploadErr != nil {
			result.Err = uploadErr
		} else {
			result.Book = &book
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

// uploadSingle streams one file as multipart/form-data without buffering it.
func (c *Client) uploadSingle(ctx context.Context, localPath string, opts UploadOptions) (Book, error) {
	file, err := os.Open(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return Book{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, file, filepath.Base(localPath), opts))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/books/upload", true, pr)
	if err != nil {
		_ = pr.Close()
		return Book{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.transferClient.Do(req)
	if err != nil {
		_ = pr.Close()
		return Book{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Book{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return Book{}, parseServerError(resp.StatusCode, body)
	}

	var out bookResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Book{}, fmt.Errorf("parse response: %w", err)
	}
	return out.Book, nil
}

func writeUploadForm(mw *multipart.Writer, file io.Reader, name string, opts UploadOptions) error {
	fields := []struct{ key, value string }{
		{"title", opts.Title},
		{"author", opts.Author},
		{"category", opts.Category},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.key, f.value); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("ebook", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return mw.Close()
}

// List returns the caller's books, newest first.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]Book, error) {
	query := url.Values{}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}

	path := "/api/books"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	books := []Book{}
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &books, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return books, nil
}

// Get returns a single book.
func (c *Client) Get(ctx context.Context, id uuid.UUID) (Book, error) {
	var book Book
	if err := c.doJSON(ctx, http.MethodGet, "/api/books/"+id.String(), true, nil, &book, http.StatusOK); err != nil {
		return Book{}, fmt.Errorf("get %s: %w", id, err)
	}
	return book, nil
}

// Update applies a partial update and returns the updated book.
func (c *Client) Update(ctx context.Context, opts UpdateOptions) (Book, error) {
	if opts.isEmpty() {
		return Book{}, ErrEmptyUpdate
	}

	body := map[string]any{}
	if opts.Title != nil {
		body["title"] = *opts.Title
	}
	if opts.Author != nil {
		body["author"] = *opts.Author
	}
	if opts.Category != nil {
		body["category"] = *opts.Category
	}
	if opts.IsFavorite != nil {
		body["isFavorite"] = *opts.IsFavorite
	}

	var out bookResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/books/"+opts.ID.String(), true, body, &out, http.StatusOK); err != nil {
		return Book{}, fmt.Errorf("update %s: %w", opts.ID, err)
	}
	return out.Book, nil
}

// Download fetches a book's file.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, io.ReadCloser, error) {
	if opts.ID == uuid.Nil {
		return nil, nil, fmt.Errorf("download: %w", ErrNoIDs)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/books/"+opts.ID.String()+"/download", true, http.NoBody)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		ID:          opts.ID,
		FileName:    attachmentName(resp.Header.Get("Content-Disposition")),
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = result.FileName
	}
	if localPath == "" {
		localPath = opts.ID.String()
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		_ = os.Remove(localPath)
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// attachmentName extracts a safe base name from a Content-Disposition header.
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(filepath.FromSlash(params["filename"]))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// Delete deletes one or more books.
// Continues on error, collecting results for all ids.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))

	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{ID: id}
		if err := c.doJSON(ctx, http.MethodDelete, "/api/books/"+id.String(), true, nil, nil, http.StatusOK); err != nil {
			result.Err = err
		} else {
			result.Deleted = true
		}
		results = append(results, result)
	}

	return results, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// TotalSize calculates the total size of books in bytes.
func TotalSize(books []Book) int64 {
	var total int64
	for i := range books {
		total += books[i].FileSize
	}
	return total
}

func (c *Client) newRequest(ctx context.Context, method, path string, auth bool, body io.Reader) (*http.Request, error) {
	if auth && c.config.Token == "" {
		return nil, ErrTokenRequired
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes a response with
// the wanted status into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out any, want int) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, auth, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != want {
		return parseServerError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// parseServerError builds an APIError from a non-success response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
	}
	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + ": " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned for invalid input, bad credentials or an existing account (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrUnauthorized is returned when the token is missing, invalid or expired (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrNotFound is returned when the book does not exist or is not the caller's (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrTooLarge is returned when an upload exceeds the server's size ceiling (413).
	ErrTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}
)
