package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/bookshelf"
	"github.com/sagarc03/bookshelf/database/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// getSharedTestDatabase returns a pool on a container shared by every test
// in the package.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container tests in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			testPoolErr = fmt.Errorf("connection string: %w", err)
			return
		}

		testPool, testPoolErr = pgxpool.New(ctx, connectionStr)
	})

	require.NoError(t, testPoolErr)
	return testPool
}

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

func dropTables(ctx context.Context, pool *pgxpool.Pool, tables bookshelf.Tables) {
	for _, name := range []string{tables.Books, tables.Users} {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{name}.Sanitize()))
	}
}

func getDSN(pool *pgxpool.Pool) string {
	return pool.Config().ConnString()
}

// setupTestRepos connects with unique table names, migrates and registers
// cleanup.
func setupTestRepos(t *testing.T) (bookshelf.UserRepo, bookshelf.BookRepo) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := testTables(t)

	db, err := postgres.Connect(ctx, getDSN(pool), tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() {
		_ = db.Close()
		dropTables(ctx, pool, tables)
	})

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
		FileName:         uuid.NewString() + ".pdf",
		OriginalFileName: title + ".pdf",
		FileSize:         2048,
		FileType:         "pdf",
		Checksum:         "abc",
		CoverImage:       bookshelf.DefaultCoverImage,
		Category:         category,
		UploadedAt:       uploaded,
		UpdatedAt:        uploaded,
	}
}
