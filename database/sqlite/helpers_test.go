package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func testTables(t *testing.T) bookshelf.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return bookshelf.Tables{Users: "users_" + suffix, Books: "books_" + suffix}
}

// setupTestRepos opens a migrated in-memory database with unique table names.
func setupTestRepos(t *testing.T) (bookshelf.UserRepo, bookshelf.BookRepo) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", testTables(t))
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.Users(), db.Books()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func createUser(t *testing.T, users bookshelf.UserRepo, email string) bookshelf.User {
	t.Helper()
	u, err := users.Create(context.Background(), bookshelf.User{
		ID:           uuid.New(),
		Name:         "Reader",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now(),
	})
	require.NoError(t, err, "create user")
	return u
}

func newBook(owner uuid.UUID, title, author, category string, uploaded time.Time) bookshelf.Book {
	return bookshelf.Book{
		ID:               uuid.New(),
		OwnerID:          owner,
		Title:            title,
		Author:           author,
		FileName:         uuid.NewString() + ".epub",
		OriginalFileName: title + ".epub",
		FileSize:         1024,
		FileType:         "epub",
		Checksum:         "abc",
		CoverImage:       bookshelf.DefaultCoverImage,
		Category:         category,
		UploadedAt:       uploaded,
		UpdatedAt:        uploaded,
	}
}
