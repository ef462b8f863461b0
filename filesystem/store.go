// Package filesystem provides the file system storage backend for bookshelf
// blobs. Writes are atomic (temp file then rename), bounded by an optional
// size limit, and checksummed with SHA-256. All access goes through an
// os.Root so paths cannot escape the storage directory.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
)

const tmpPrefix = ".t"

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens a file for reading. Returns bookshelf.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, bookshelf.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, bookshelf.ErrNotFound
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to p using a temp file and rename.
// It creates intermediate directories as needed and returns the number of
// bytes written and their SHA-256 checksum. When limit is positive and content
// is longer than limit bytes the write is abandoned with bookshelf.ErrFileTooLarge.
// The temp file is removed on every failure, including context cancellation.
func (s *Store) Write(ctx context.Context, p string, content io.Reader, limit int64) (bookshelf.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return bookshelf.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return bookshelf.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	var src io.Reader = &ctxReader{ctx: ctx, r: content}
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, src)
	if err != nil {
		return bookshelf.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if limit > 0 && fileSizeBytes > limit {
		return bookshelf.SaveResult{}, fmt.Errorf("write %s: more than %d bytes: %w", p, limit, bookshelf.ErrFileTooLarge)
	}

	err = t.Sync()
	if err != nil {
		return bookshelf.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := t.Close(); err != nil {
		return bookshelf.SaveResult{}, fmt.Errorf("could not close written file: %w", err)
	}

	destDir := path.Dir(p)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return bookshelf.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, p); renameErr != nil {
		return bookshelf.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	checksum := hex.EncodeToString(h.Sum(nil))
	success = true

	return bookshelf.SaveResult{BytesWritten: fileSizeBytes, Checksum: checksum}, nil
}

// Delete removes a file. Returns bookshelf.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return bookshelf.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List recursively walks the root directory and returns every regular file
// with its slash-separated path, size and modification time. Temp files of
// in-flight writes are skipped.
func (s *Store) List(ctx context.Context) ([]bookshelf.ObjectEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []bookshelf.ObjectEntry{}

	err := s.walkDir(ctx, ".", &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, dir string, entries *[]bookshelf.ObjectEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryPath := path.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("walk dir: %w", err)
		}

		*entries = append(*entries, bookshelf.ObjectEntry{
			Path:    entryPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return nil
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
