package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// BlobStore keeps uploaded e-book files under a per-owner namespace:
// <owner id>/<uuid><ext>. It owns name generation and the upload policy
// (allowed types and size ceiling) on top of a FileStorage.
type BlobStore struct {
	storage FileStorage
	maxSize int64
}

// NewBlobStore wraps storage. A non-positive maxSize uses DefaultMaxFileSize.
func NewBlobStore(storage FileStorage, maxSize int64) (*BlobStore, error) {
	if storage == nil {
		return nil, errors.New("new blob store: storage is nil")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &BlobStore{storage: storage, maxSize: maxSize}, nil
}

// MaxSize returns the upload ceiling in bytes.
func (b *BlobStore) MaxSize() int64 {
	return b.maxSize
}

// Put validates originalName and streams content to a freshly generated name
// in the owner's directory. Content of exactly MaxSize bytes is accepted.
func (b *BlobStore) Put(ctx context.Context, ownerID uuid.UUID, originalName string, content io.Reader) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}

	if ownerID == uuid.Nil {
		return StoredFile{}, fmt.Errorf("put blob: %w: empty owner", ErrInvalidInput)
	}

	if !IsAllowedFileType(originalName) {
		return StoredFile{}, fmt.Errorf("put blob %q: %w", originalName, ErrUnsupportedFileType)
	}

	fileType := FileType(originalName)
	name := uuid.New().String() + "." + fileType

	res, err := b.storage.Write(ctx, blobPath(ownerID, name), content, b.maxSize)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return StoredFile{}, fmt.Errorf("put blob %q: %w", originalName, err)
		}
		return StoredFile{}, fmt.Errorf("put blob %q: %w: %w", originalName, ErrStorage, err)
	}

	return StoredFile{
		Name:         name,
		OriginalName: originalName,
		FileType:     fileType,
		Size:         res.BytesWritten,
		Checksum:     res.Checksum,
	}, nil
}

// Get opens the named blob of ownerID.
func (b *BlobStore) Get(ctx context.Context, ownerID uuid.UUID, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ownerID == uuid.Nil || !IsValidStoredName(name) {
		return nil, fmt.Errorf("get blob %q: %w", name, ErrInvalidInput)
	}

	r, err := b.storage.Get(ctx, blobPath(ownerID, name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("get blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get blob %q: %w: %w", name, ErrStorage, err)
	}

	return r, nil
}

// Delete removes the named blob of ownerID. A missing blob is not an error.
func (b *BlobStore) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ownerID == uuid.Nil || !IsValidStoredName(name) {
		return fmt.Errorf("delete blob %q: %w", name, ErrInvalidInput)
	}

	err := b.storage.Delete(ctx, blobPath(ownerID, name))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete blob %q: %w: %w", name, ErrStorage, err)
	}

	return nil
}

// BlobEntry is a stored blob found by List.
type BlobEntry struct {
	OwnerID uuid.UUID
	Name    string
	ObjectEntry
}

// List returns every blob laid out as <owner id>/<generated name>. Files that
// do not follow the layout are reported in skipped so the caller can log them.
func (b *BlobStore) List(ctx context.Context) (blobs []BlobEntry, skipped []string, err error) {
	entries, err := b.storage.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list blobs: %w", err)
	}

	blobs = make([]BlobEntry, 0, len(entries))
	for _, e := range entries {
		owner, name, ok := parseBlobPath(e.Path)
		if !ok {
			skipped = append(skipped, e.Path)
			continue
		}
		blobs = append(blobs, BlobEntry{OwnerID: owner, Name: name, ObjectEntry: e})
	}

	return blobs, skipped, nil
}

func blobPath(ownerID uuid.UUID, name string) string {
	return path.Join(ownerID.String(), name)
}

func parseBlobPath(p string) (uuid.UUID, string, bool) {
	dir, name, ok := strings.Cut(p, "/")
	if !ok || strings.Contains(name, "/") {
		return uuid.Nil, "", false
	}
	owner, err := uuid.Parse(dir)
	if err != nil || owner.String() != dir || !IsValidStoredName(name) {
		return uuid.Nil, "", false
	}
	return owner, name, true
}
