package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo(t *testing.T) {
	users, _ := setupTestRepos(t)
	ctx := context.Background()

	created := createUser(t, users, "ada@example.com")

	t.Run("get by email", func(t *testing.T) {
		got, err := users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := users.Create(ctx, bookshelf.User{
			ID: uuid.New(), Name: "Other", Email: "ada@example.com", PasswordHash: "x", CreatedAt: now(),
		})
		assert.ErrorIs(t, err, bookshelf.ErrConflict)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := users.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, bookshelf.ErrNotFound)

		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, bookshelf.ErrNotFound)
	})
}

func TestBookRepo_CreateGet(t *testing.T) {
	users, books := setupTestRepos(t)
	ctx := context.Background()

	owner := createUser(t, users, "a@example.com")
	other := createUser(t, users, "b@example.com")

	b := newBook(owner.ID, "Dune", "Frank Herbert", "scifi", now())
	_, err := books.Create(ctx, b)
	require.NoError(t, err)

	got, err := books.Get(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Title, got.Title)
	assert.Equal(t, b.FileName, got.FileName)
	assert.Equal(t, int64(1024), got.FileSize)
	assert.False(t, got.IsFavorite)
	assert.True(t, b.UploadedAt.Equal(got.UploadedAt))

	_, err = books.Get(ctx, other.ID, b.ID)
	assert.ErrorIs(t, err, bookshelf.ErrNotFound, "other owners never see the book")

	dup := newBook(owner.ID, "Copy", "X", "scifi", now())
	dup.FileName = b.FileName
	_, err = books.Create(ctx, dup)
	assert.ErrorIs(t, err, bookshelf.ErrConflict)
}

func TestBookRepo_List(t *testing.T) {
	users, books := setupTestRepos(t)
	ctx := context.Background()

	owner := createUser(t, users, "a@example.com")
	other := createUser(t, users, "b@example.com")

	base := now()
	dune := newBook(owner.ID, "Dune", "Frank Herbert", "scifi", base)
	emma := newBook(owner.ID, "Emma", "Jane Austen", "classics", base.Add(time.Second))
	emma.IsFavorite = true
	pct := newBook(owner.ID, "100% Pure", "Anon", "misc", base.Add(2*time.Second))
	foreign := newBook(other.ID, "Dune Messiah", "Frank Herbert", "scifi", base)

	for _, b := range []bookshelf.Book{dune, emma, pct, foreign} {
		_, err := books.Create(ctx, b)
		require.NoError(t, err)
	}

	titles := func(bs []bookshelf.Book) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.Title)
		}
		return out
	}

	tests := []struct {
		name   string
		filter bookshelf.BookFilter
		want   []string
	}{
		{name: "all newest first", filter: bookshelf.BookFilter{}, want: []string{"100% Pure", "Emma", "Dune"}},
		{name: "all keyword", filter: bookshelf.BookFilter{Category: "all"}, want: []string{"100% Pure", "Emma", "Dune"}},
		{name: "favorites", filter: bookshelf.BookFilter{Category: "favorites"}, want: []string{"Emma"}},
		{name: "exact category", filter: bookshelf.BookFilter{Category: "scifi"}, want: []string{"Dune"}},
		{name: "unknown category", filter: bookshelf.BookFilter{Category: "poetry"}, want: []string{}},
		{name: "search title case-insensitive", filter: bookshelf.BookFilter{Search: "dUnE"}, want: []string{"Dune"}},
		{name: "search author", filter: bookshelf.BookFilter{Search: "austen"}, want: []string{"Emma"}},
		{name: "search escapes wildcards", filter: bookshelf.BookFilter{Search: "%"}, want: []string{"100% Pure"}},
		{name: "search and category", filter: bookshelf.BookFilter{Category: "classics", Search: "herbert"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := books.List(ctx, owner.ID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestBookRepo_ListSearchNonASCII(t *testing.T) {
	users, books := setupTestRepos(t)
	ctx := context.Background()

	owner := createUser(t, users, "reader@example.com")
	emile := newBook(owner.ID, "Émile ou de l'éducation", "Jean-Jacques Rousseau", "classics", now())
	war := newBook(owner.ID, "Война и мир", "Лев Толстой", "classics", now().Add(time.Second))
	for _, b := range []bookshelf.Book{emile, war} {
		_, err := books.Create(ctx, b)
		require.NoError(t, err)
	}

	tests := []struct {
		search string
		want   string
	}{
		{search: "émile", want: emile.Title},
		{search: "ÉMILE", want: emile.Title},
		{search: "война", want: war.Title},
		{search: "ТОЛСТОЙ", want: war.Title},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := books.List(ctx, owner.ID, bookshelf.BookFilter{Search: tt.search})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Title)
		})
	}

	t.Run("leading space is part of the term", func(t *testing.T) {
		got, err := books.List(ctx, owner.ID, bookshelf.BookFilter{Search: " мир"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, war.Title, got[0].Title)

		got, err = books.List(ctx, owner.ID, bookshelf.BookFilter{Search: " émile"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBookRepo_Update(t *testing.T) {
	users, books := setupTestRepos(t)
	ctx := context.Background()

	owner := createUser(t, users, "a@example.com")
	b := newBook(owner.ID, "Dune", "Frank Herbert", "scifi", now().Add(-time.Hour))
	_, err := books.Create(ctx, b)
	require.NoError(t, err)

	fav := true
	title := "Dune (1965)"
	got, err := books.Update(ctx, owner.ID, b.ID, bookshelf.BookPatch{Title: &title, IsFavorite: &fav})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, "Frank Herbert", got.Author, "unset fields are kept")
	assert.True(t, got.IsFavorite)
	assert.True(t, got.UpdatedAt.After(b.UpdatedAt))

	unfav := false
	got, err = books.Update(ctx, owner.ID, b.ID, bookshelf.BookPatch{IsFavorite: &unfav})
	require.NoError(t, err)
	assert.False(t, got.IsFavorite, "false is applied")

	_, err = books.Update(ctx, uuid.New(), b.ID, bookshelf.BookPatch{Title: &title})
	assert.ErrorIs(t, err, bookshelf.ErrNotFound)
}

func TestBookRepo_DeleteHasFile(t *testing.T) {
	users, books := setupTestRepos(t)
	ctx := context.Background()

	owner := createUser(t, users, "a@example.com")
	other := createUser(t, users, "b@example.com")
	b := newBook(owner.ID, "Dune", "Frank Herbert", "scifi", now())
	_, err := books.Create(ctx, b)
	require.NoError(t, err)

	has, err := books.HasFile(ctx, owner.ID, b.FileName)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = books.HasFile(ctx, other.ID, b.FileName)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = books.Delete(ctx, other.ID, b.ID)
	assert.ErrorIs(t, err, bookshelf.ErrNotFound)

	deleted, err := books.Delete(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.FileName, deleted.FileName)

	_, err = books.Delete(ctx, owner.ID, b.ID)
	assert.ErrorIs(t, err, bookshelf.ErrNotFound)

	has, err = books.HasFile(ctx, owner.ID, b.FileName)
	require.NoError(t, err)
	assert.False(t, has)
}
