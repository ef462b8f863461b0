package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CatalogService manages owner-scoped book records together with their files.
type CatalogService struct {
	repo           BookRepo
	blobs          *BlobStore
	cleanupTimeout time.Duration
	now            func() time.Time
}

// CatalogConfig holds configuration options for CatalogService.
type CatalogConfig struct {
	CleanupTimeout time.Duration // Timeout for blob cleanup after a failed insert (default: 30s)
}

func NewCatalogService(repo BookRepo, blobs *BlobStore, cfg CatalogConfig) (*CatalogService, error) {
	if repo == nil {
		return nil, errors.New("new catalog service: book repo is nil")
	}
	if blobs == nil {
		return nil, errors.New("new catalog service: blob store is nil")
	}
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	return &CatalogService{
		repo:           repo,
		blobs:          blobs,
		cleanupTimeout: cleanupTimeout,
		now:            func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

// MaxFileSize returns the upload ceiling enforced by the underlying BlobStore.
func (s *CatalogService) MaxFileSize() int64 {
	return s.blobs.MaxSize()
}

// Upload stores content as a new blob for ownerID and records it as a book.
// It is BlobStore.Put followed by Create; see Create for the cleanup contract.
func (s *CatalogService) Upload(ctx context.Context, ownerID uuid.UUID, meta BookMetadata, originalName string, content io.Reader) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("upload book: %w", err)
	}

	file, err := s.blobs.Put(ctx, ownerID, originalName, content)
	if err != nil {
		return Book{}, fmt.Errorf("upload book: %w", err)
	}

	return s.Create(ctx, ownerID, meta, file)
}

// Create records a book for a blob that was already stored with BlobStore.Put.
//
// Missing metadata falls back to defaults: the title to the original file
// name without its extension, the author to "Unknown" and the category to
// "uncategorized". The upload time is set to now.
//
// If the record cannot be persisted the blob is deleted using a background
// context bounded by the configured cleanup timeout, so cleanup still runs
// when ctx has been cancelled.
func (s *CatalogService) Create(ctx context.Context, ownerID uuid.UUID, meta BookMetadata, file StoredFile) (Book, error) {
	if err := ctx.Err(); err != nil {
		_ = s.discard(ownerID, file.Name)
		return Book{}, fmt.Errorf("create book: %w", err)
	}

	now := s.now()
	b := Book{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Title:            firstNonEmpty(meta.Title, TitleFromFileName(file.OriginalName), file.OriginalName),
		Author:           firstNonEmpty(meta.Author, DefaultAuthor),
		FileName:         file.Name,
		OriginalFileName: file.OriginalName,
		FileSize:         file.Size,
		FileType:         file.FileType,
		Checksum:         file.Checksum,
		CoverImage:       DefaultCoverImage,
		Category:         firstNonEmpty(meta.Category, DefaultCategory),
		UploadedAt:       now,
		UpdatedAt:        now,
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		if delErr := s.discard(ownerID, file.Name); delErr != nil {
			return Book{}, fmt.Errorf("create book %s: insert failed (%w) and cleanup failed: %w", file.OriginalName, err, delErr)
		}
		return Book{}, fmt.Errorf("create book %s: insert failed: %w", file.OriginalName, err)
	}

	return created, nil
}

func (s *CatalogService) discard(ownerID uuid.UUID, name string) error {
	// the request context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()

	err := s.blobs.Delete(ctx, ownerID, name)
	if err != nil {
		slog.Warn("failed to discard blob", "owner_id", ownerID, "file", name, "err", err)
	}
	return err
}

func (s *CatalogService) List(ctx context.Context, ownerID uuid.UUID, f BookFilter) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	f.Category = strings.TrimSpace(f.Category)

	books, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if books == nil {
		books = []Book{}
	}

	return books, nil
}

func (s *CatalogService) Get(ctx context.Context, ownerID, id uuid.UUID) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("get book: %w", err)
	}

	b, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}

	return b, nil
}

// Update applies p to the owner's book. Empty strings are ignored; an explicit
// IsFavorite, including false, is always applied. An empty patch returns the
// book unchanged.
func (s *CatalogService) Update(ctx context.Context, ownerID, id uuid.UUID, p BookPatch) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("update book: %w", err)
	}

	p.Title = nonEmpty(p.Title)
	p.Author = nonEmpty(p.Author)
	p.Category = nonEmpty(p.Category)

	if p.IsEmpty() {
		return s.Get(ctx, ownerID, id)
	}

	b, err := s.repo.Update(ctx, ownerID, id, p)
	if err != nil {
		return Book{}, fmt.Errorf("update book %s: %w", id, err)
	}

	return b, nil
}

// Delete removes the owner's book record and then its blob. The record is
// authoritative: once it is gone the call succeeds even if the blob cannot be
// removed, and the leftover file is reported by Reconcile later.
func (s *CatalogService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	b, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}

	if err := s.blobs.Delete(ctx, ownerID, b.FileName); err != nil {
		slog.Warn("book deleted but blob removal failed",
			"book_id", b.ID, "owner_id", ownerID, "file", b.FileName, "err", err)
	}

	return nil
}

// Download returns the owner's book and an open reader on its file. The caller
// closes the reader. A record whose file is missing yields an error matching
// both ErrNotFound and ErrBlobMissing.
func (s *CatalogService) Download(ctx context.Context, ownerID, id uuid.UUID) (Book, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, nil, fmt.Errorf("download book: %w", err)
	}

	b, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Book{}, nil, fmt.Errorf("download book %s: %w", id, err)
	}

	f, err := s.blobs.Get(ctx, ownerID, b.FileName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Error("book file missing from storage", "book_id", b.ID, "owner_id", ownerID, "file", b.FileName)
			return Book{}, nil, fmt.Errorf("download book %s: %w: %w", id, ErrBlobMissing, err)
		}
		return Book{}, nil, fmt.Errorf("download book %s: %w", id, err)
	}

	return b, f, nil
}

// ReconcileOptions controls Reconcile.
type ReconcileOptions struct {
	// GraceAge skips blobs modified more recently than this, since an upload
	// may still be between writing its file and inserting its record.
	GraceAge time.Duration
	// DryRun reports orphans without deleting them.
	DryRun bool
}

// ReconcileResult summarises a Reconcile run.
type ReconcileResult struct {
	Scanned  int
	Orphans  []BlobEntry
	Removed  int
	Skipped  []string
	TooFresh int
}

// Reconcile walks the blob store and removes blobs that no book record
// references. These are left behind by a crash between storing a file and
// inserting its record, or by a failed blob removal during Delete.
//
// Files that do not follow the <owner>/<generated name> layout are never
// touched and are returned in Skipped.
func (s *CatalogService) Reconcile(ctx context.Context, opts ReconcileOptions) (ReconcileResult, error) {
	if err := ctx.Err(); err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile: %w", err)
	}

	blobs, skipped, err := s.blobs.List(ctx)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile: %w", err)
	}

	res := ReconcileResult{Skipped: skipped}
	cutoff := s.now().Add(-opts.GraceAge)

	for _, blob := range blobs {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("reconcile: %w", err)
		}

		res.Scanned++

		if blob.ModTime.After(cutoff) {
			res.TooFresh++
			continue
		}

		referenced, err := s.repo.HasFile(ctx, blob.OwnerID, blob.Name)
		if err != nil {
			return res, fmt.Errorf("reconcile '%s': %w", blob.Path, err)
		}
		if referenced {
			continue
		}

		res.Orphans = append(res.Orphans, blob)
		if opts.DryRun {
			continue
		}

		if err := s.blobs.Delete(ctx, blob.OwnerID, blob.Name); err != nil {
			return res, fmt.Errorf("reconcile '%s': %w", blob.Path, err)
		}
		res.Removed++
	}

	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
