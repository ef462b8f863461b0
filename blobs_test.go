package bookshelf_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBlobStore(t *testing.T) (*bookshelf.BlobStore, *SpyFileStorage) {
	t.Helper()
	storage := new(SpyFileStorage)
	blobs, err := bookshelf.NewBlobStore(storage, 100)
	require.NoError(t, err)
	return blobs, storage
}

func TestNewBlobStore_NilStorage(t *testing.T) {
	_, err := bookshelf.NewBlobStore(nil, 10)
	assert.Error(t, err)
}

func TestBlobStore_Put(t *testing.T) {
	owner := uuid.New()

	t.Run("generates a name under the owner directory", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()
		content := bytes.NewBufferString("x")

		var written string
		storage.On("Write", ctx, mock.Anything, content, int64(100)).
			Run(func(args mock.Arguments) { written = args.String(1) }).
			Return(bookshelf.SaveResult{BytesWritten: 1, Checksum: "c"}, nil)

		file, err := blobs.Put(ctx, owner, "Book.DOCX", content)
		require.NoError(t, err)

		assert.Equal(t, owner.String()+"/"+file.Name, written)
		assert.True(t, bookshelf.IsValidStoredName(file.Name))
		assert.True(t, strings.HasSuffix(file.Name, ".docx"), "extension is stored lowercased")
		assert.Equal(t, "docx", file.FileType)
		assert.Equal(t, "Book.DOCX", file.OriginalName)
		assert.Equal(t, int64(1), file.Size)
		assert.Equal(t, "c", file.Checksum)
	})

	t.Run("two uploads of the same name never collide", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		storage.On("Write", ctx, mock.Anything, mock.Anything, int64(100)).Return(bookshelf.SaveResult{}, nil)

		a, err := blobs.Put(ctx, owner, "same.pdf", bytes.NewBufferString("a"))
		require.NoError(t, err)
		b, err := blobs.Put(ctx, owner, "same.pdf", bytes.NewBufferString("b"))
		require.NoError(t, err)

		assert.NotEqual(t, a.Name, b.Name)
	})

	t.Run("rejects nil owner", func(t *testing.T) {
		blobs, storage := newBlobStore(t)

		_, err := blobs.Put(context.Background(), uuid.Nil, "a.pdf", bytes.NewBufferString("a"))
		assert.ErrorIs(t, err, bookshelf.ErrInvalidInput)
		storage.AssertNotCalled(t, "Write")
	})

	t.Run("cancellation is not a storage error", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		storage.On("Write", ctx, mock.Anything, mock.Anything, int64(100)).
			Return(bookshelf.SaveResult{}, context.Canceled)

		_, err := blobs.Put(ctx, owner, "a.pdf", bytes.NewBufferString("a"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, bookshelf.ErrStorage)
	})
}

func TestBlobStore_Get(t *testing.T) {
	owner := uuid.New()
	name := uuid.NewString() + ".epub"

	t.Run("invalid names never reach storage", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		for _, bad := range []string{"../../etc/passwd", "a.epub", name + "/x", ""} {
			_, err := blobs.Get(ctx, owner, bad)
			assert.ErrorIs(t, err, bookshelf.ErrInvalidInput, bad)
		}
		_, err := blobs.Get(ctx, uuid.Nil, name)
		assert.ErrorIs(t, err, bookshelf.ErrInvalidInput)

		storage.AssertNotCalled(t, "Get")
	})

	t.Run("not found", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		storage.On("Get", ctx, owner.String()+"/"+name).Return(nil, bookshelf.ErrNotFound)

		_, err := blobs.Get(ctx, owner, name)
		assert.ErrorIs(t, err, bookshelf.ErrNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		storage.On("Get", ctx, mock.Anything).Return(nil, errors.New("eio"))

		_, err := blobs.Get(ctx, owner, name)
		assert.ErrorIs(t, err, bookshelf.ErrStorage)
		assert.NotErrorIs(t, err, bookshelf.ErrNotFound)
	})
}

func TestBlobStore_Delete(t *testing.T) {
	owner := uuid.New()
	name := uuid.NewString() + ".txt"

	t.Run("missing blob is not an error", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx := context.Background()

		storage.On("Delete", ctx, owner.String()+"/"+name).Return(bookshelf.ErrNotFound)

		assert.NoError(t, blobs.Delete(ctx, owner, name))
	})

	t.Run("context cancelled", func(t *testing.T) {
		blobs, storage := newBlobStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, blobs.Delete(ctx, owner, name), context.Canceled)
		storage.AssertNotCalled(t, "Delete")
	})
}

func TestBlobStore_List(t *testing.T) {
	blobs, storage := newBlobStore(t)
	ctx := context.Background()

	owner := uuid.New()
	name := uuid.NewString() + ".mobi"
	now := time.Now()

	storage.On("List", ctx).Return([]bookshelf.ObjectEntry{
		{Path: owner.String() + "/" + name, Size: 3, ModTime: now},
		{Path: "notes.txt"},
		{Path: "not-a-uuid/" + name},
		{Path: owner.String() + "/nested/" + name},
		{Path: owner.String() + "/readme.md"},
	}, nil)

	entries, skipped, err := blobs.List(ctx)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, owner, entries[0].OwnerID)
	assert.Equal(t, name, entries[0].Name)
	assert.Equal(t, int64(3), entries[0].Size)
	assert.Len(t, skipped, 4)
}
