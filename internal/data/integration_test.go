//go:build integration
// +build integration

// internal/data/integration_test.go
// Referential-integrity tests for the rules the schema enforces on delete:
// removing an author takes its books with it, removing a category detaches
// its books. Runs against a disposable postgres container, so it needs a
// Docker daemon: go test -tags integration ./internal/data
package data

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a postgres container, applies the initial schema
// migration and returns a connected pool. The cleanup function terminates the
// container.
func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx))

	schema, err := os.ReadFile("../../migrations/000001_initial_schema.up.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return db, cleanup
}

// seedAuthorAndBook inserts an author and one of their books, optionally
// categorized.
func seedAuthorAndBook(t *testing.T, models Models, isbn string, categoryID *int64) (*Author, *Book) {
	t.Helper()
	ctx := context.Background()

	author := &Author{Name: "Frank Herbert", Nationality: "American"}
	require.NoError(t, models.Authors.Insert(ctx, author))

	book := &Book{
		Title:           "Dune",
		AuthorID:        author.ID,
		CategoryID:      categoryID,
		ISBN:            isbn,
		PublicationDate: NewDate(1965, time.August, 1),
		Pages:           412,
		Availability:    AvailabilityAvailable,
	}
	require.NoError(t, models.Books.Insert(ctx, book))

	return author, book
}

func TestAuthorDelete_CascadesToBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	models := NewModels(db)
	ctx := context.Background()

	author, book := seedAuthorAndBook(t, models, "0441013597", nil)

	require.NoError(t, models.Authors.Delete(ctx, author.ID))

	// The book must not survive its author.
	_, err := models.Books.Get(ctx, book.ID)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestCategoryDelete_DetachesBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	models := NewModels(db)
	ctx := context.Background()

	category := &Category{Name: "Science Fiction"}
	require.NoError(t, models.Categories.Insert(ctx, category))

	_, book := seedAuthorAndBook(t, models, "0441013598", &category.ID)

	require.NoError(t, models.Categories.Delete(ctx, category.ID))

	// The book survives, uncategorized.
	got, err := models.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.CategoryName)
}
