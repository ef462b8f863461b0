package filesystem_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	osDir, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = osDir.Close() })
	return filesystem.NewFileStorage(osDir), tempDir
}

// dirEntries lists every file below dir, including temp files.
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(dir, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestStore_Get_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("test content")
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "test.epub"), content, 0o644))

	result, err := store.Get(context.Background(), "test.epub")
	require.NoError(t, err)

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
	assert.NoError(t, result.Close())
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "test.txt")
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)

	result, err := store.Get(context.Background(), "owner/nonexistent.txt")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, bookshelf.ErrNotFound)
}

func TestStore_Get_DirectoryIsNotFound(t *testing.T) {
	store, tempDir := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "owner"), 0o755))

	_, err := store.Get(context.Background(), "owner")
	assert.ErrorIs(t, err, bookshelf.ErrNotFound)
}

func TestStore_Get_EscapeRejected(t *testing.T) {
	store, tempDir := newStore(t)
	outside := filepath.Join(filepath.Dir(tempDir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	_, err := store.Get(context.Background(), "../outside.txt")
	assert.Error(t, err)
}

func TestStore_Write_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("Hello, World!")
	result, err := store.Write(context.Background(), "owner/book.epub", bytes.NewReader(content), 0)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, int64(len(content)), result.BytesWritten)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)

	written, err := os.ReadFile(filepath.Join(tempDir, "owner", "book.epub"))
	require.NoError(t, err)
	assert.Equal(t, content, written)
	assert.Equal(t, []string{"owner/book.epub"}, dirEntries(t, tempDir))
}

func TestStore_Write_Limit(t *testing.T) {
	t.Run("exactly at the limit succeeds", func(t *testing.T) {
		store, tempDir := newStore(t)

		content := bytes.Repeat([]byte("a"), 64)
		result, err := store.Write(context.Background(), "o/a.txt", bytes.NewReader(content), 64)
		require.NoError(t, err)
		assert.Equal(t, int64(64), result.BytesWritten)
		assert.Equal(t, []string{"o/a.txt"}, dirEntries(t, tempDir))
	})

	t.Run("one byte over fails and leaves nothing", func(t *testing.T) {
		store, tempDir := newStore(t)

		content := bytes.Repeat([]byte("a"), 65)
		_, err := store.Write(context.Background(), "o/a.txt", bytes.NewReader(content), 64)
		assert.ErrorIs(t, err, bookshelf.ErrFileTooLarge)
		assert.Empty(t, dirEntries(t, tempDir))
	})

	t.Run("zero limit is unbounded", func(t *testing.T) {
		store, _ := newStore(t)

		content := bytes.Repeat([]byte("a"), 1<<20)
		result, err := store.Write(context.Background(), "big.txt", bytes.NewReader(content), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1<<20), result.BytesWritten)
	})
}

func TestStore_Write_Overwrite(t *testing.T) {
	store, tempDir := newStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "a.txt", bytes.NewBufferString("first"), 0)
	require.NoError(t, err)
	_, err = store.Write(ctx, "a.txt", bytes.NewBufferString("second"), 0)
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(tempDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(written))
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Write(ctx, "test.txt", bytes.NewBufferString("data"), 0)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, dirEntries(t, tempDir))
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	reader := &slowReader{data: []byte("test content"), cancel: cancel}

	result, err := store.Write(ctx, "o/test.txt", reader, 100)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), result.BytesWritten)
	assert.Empty(t, result.Checksum)
	assert.Empty(t, dirEntries(t, tempDir))
}

type slowReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *slowReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestStore_Write_ReaderError(t *testing.T) {
	store, tempDir := newStore(t)

	_, err := store.Write(context.Background(), "o/x.pdf", failingReader{}, 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Empty(t, dirEntries(t, tempDir))
}

func TestStore_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store, tempDir := newStore(t)
		ctx := context.Background()

		_, err := store.Write(ctx, "o/a.txt", bytes.NewBufferString("x"), 0)
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "o/a.txt"))
		assert.NoFileExists(t, filepath.Join(tempDir, "o", "a.txt"))

		_, err = store.Get(ctx, "o/a.txt")
		assert.ErrorIs(t, err, bookshelf.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		store, _ := newStore(t)
		assert.ErrorIs(t, store.Delete(context.Background(), "o/missing.txt"), bookshelf.ErrNotFound)
	})

	t.Run("context canceled", func(t *testing.T) {
		store, _ := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, context.Canceled, store.Delete(ctx, "a.txt"))
	})
}

func TestStore_List(t *testing.T) {
	t.Run("nested owners with slash paths", func(t *testing.T) {
		store, tempDir := newStore(t)
		ctx := context.Background()

		for _, p := range []string{"a/1.epub", "a/2.pdf", "b/3.txt"} {
			_, err := store.Write(ctx, p, bytes.NewBufferString(p), 0)
			require.NoError(t, err)
		}
		// a stale temp file from an interrupted write
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".tstale"), []byte("x"), 0o644))

		entries, err := store.List(ctx)
		require.NoError(t, err)

		paths := make([]string, 0, len(entries))
		for _, e := range entries {
			paths = append(paths, e.Path)
			assert.Equal(t, int64(len(e.Path)), e.Size)
			assert.False(t, e.ModTime.IsZero())
		}
		sort.Strings(paths)
		assert.Equal(t, []string{"a/1.epub", "a/2.pdf", "b/3.txt"}, paths)
	})

	t.Run("empty directory", func(t *testing.T) {
		store, _ := newStore(t)

		entries, err := store.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("context canceled", func(t *testing.T) {
		store, _ := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.List(ctx)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestStore_Integration_WriteReadDelete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	content := []byte("round trip")
	_, err := store.Write(ctx, "owner/file.mobi", bytes.NewReader(content), 1024)
	require.NoError(t, err)

	r, err := store.Get(ctx, "owner/file.mobi")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, "owner/file.mobi"))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			content := fmt.Appendf(nil, "content-%d", n)
			_, err := store.Write(ctx, fmt.Sprintf("owner-%d/file.txt", n%3), bytes.NewReader(content), 0)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
