// cmd/api/testutils_test.go
// In-memory store stubs and helpers shared by the handler tests. The stubs
// satisfy the store interfaces in internal/data so the full middleware and
// handler chain can be exercised with httptest and no database.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tmejia-dev/library-catalog/internal/data"
)

const testJWTSecret = "test-secret"

// testStores bundles the stub stores so tests can seed and inspect them.
type testStores struct {
	books      *stubBookStore
	authors    *stubAuthorStore
	categories *stubCategoryStore
	stats      *stubStatsStore
}

// newTestApplication builds an application wired to fresh in-memory stubs,
// with logging discarded and the rate limiter disabled so tests can issue
// as many requests as they like.
func newTestApplication() (*applicationDependencies, *testStores) {
	stores := &testStores{
		books:      &stubBookStore{authorNames: map[int64]string{}},
		authors:    &stubAuthorStore{},
		categories: &stubCategoryStore{},
		stats:      &stubStatsStore{},
	}

	var settings serverConfig
	settings.environment = "test"
	settings.jwt.secret = testJWTSecret
	settings.limiter.enabled = false

	app := &applicationDependencies{
		config: settings,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.Models{
			Books:      stores.books,
			Authors:    stores.authors,
			Categories: stores.categories,
			Stats:      stores.stats,
		},
	}

	return app, stores
}

// readBody decodes a JSON response body into dst.
func readBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// stubBookStore is an in-memory BookStore. Its GetAll applies the same
// matching semantics as the SQL filter engine so listing scenarios can be
// exercised end to end.
type stubBookStore struct {
	nextID      int64
	books       []*data.Book
	authorNames map[int64]string // fills the denormalized name on insert
}

func (s *stubBookStore) Insert(_ context.Context, book *data.Book) error {
	s.nextID++
	book.ID = s.nextID
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	book.AuthorName = s.authorNames[book.AuthorID]

	clone := *book
	s.books = append(s.books, &clone)
	return nil
}

func (s *stubBookStore) Get(_ context.Context, id int64) (*data.Book, error) {
	for _, b := range s.books {
		if b.ID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *stubBookStore) GetAll(_ context.Context, search data.BookFilters, _ data.Filters) ([]*data.Book, data.Metadata, error) {
	matched := []*data.Book{}
	for _, b := range s.books {
		if matchBook(b, search) {
			clone := *b
			matched = append(matched, &clone)
		}
	}

	// Newest first, id ascending on ties.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return matched, data.Metadata{TotalRecords: len(matched)}, nil
}

// matchBook mirrors the SQL predicates: case-insensitive substring for
// search/author, case-insensitive equality for category, exact equality for
// availability.
func matchBook(b *data.Book, f data.BookFilters) bool {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}

	if f.Search != "" && !(contains(b.Title, f.Search) || contains(b.AuthorName, f.Search) || contains(b.ISBN, f.Search)) {
		return false
	}
	if f.Category != "" && (b.CategoryName == nil || !strings.EqualFold(*b.CategoryName, f.Category)) {
		return false
	}
	if f.Availability != "" && b.Availability != f.Availability {
		return false
	}
	if f.Author != "" && !contains(b.AuthorName, f.Author) {
		return false
	}
	return true
}

func (s *stubBookStore) Update(_ context.Context, book *data.Book) error {
	for i, b := range s.books {
		if b.ID == book.ID {
			book.UpdatedAt = time.Now()
			clone := *book
			s.books[i] = &clone
			return nil
		}
	}
	return data.ErrRecordNotFound
}

func (s *stubBookStore) Delete(_ context.Context, id int64) error {
	for i, b := range s.books {
		if b.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return data.ErrRecordNotFound
}

// stubAuthorStore is an in-memory AuthorStore.
type stubAuthorStore struct {
	nextID  int64
	authors []*data.Author
}

func (s *stubAuthorStore) Insert(_ context.Context, author *data.Author) error {
	s.nextID++
	author.ID = s.nextID
	author.CreatedAt = time.Now()
	author.UpdatedAt = author.CreatedAt

	clone := *author
	s.authors = append(s.authors, &clone)
	return nil
}

func (s *stubAuthorStore) Get(_ context.Context, id int64) (*data.Author, error) {
	for _, a := range s.authors {
		if a.ID == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *stubAuthorStore) GetAll(_ context.Context, _ data.Filters) ([]*data.Author, data.Metadata, error) {
	out := make([]*data.Author, len(s.authors))
	for i, a := range s.authors {
		clone := *a
		out[i] = &clone
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, data.Metadata{TotalRecords: len(out)}, nil
}

func (s *stubAuthorStore) Update(_ context.Context, author *data.Author) error {
	for i, a := range s.authors {
		if a.ID == author.ID {
			author.UpdatedAt = time.Now()
			clone := *author
			s.authors[i] = &clone
			return nil
		}
	}
	return data.ErrRecordNotFound
}

func (s *stubAuthorStore) Delete(_ context.Context, id int64) error {
	for i, a := range s.authors {
		if a.ID == id {
			s.authors = append(s.authors[:i], s.authors[i+1:]...)
			return nil
		}
	}
	return data.ErrRecordNotFound
}

// stubCategoryStore is an in-memory CategoryStore.
type stubCategoryStore struct {
	nextID     int64
	categories []*data.Category
}

func (s *stubCategoryStore) Insert(_ context.Context, category *data.Category) error {
	for _, c := range s.categories {
		if c.Name == category.Name {
			return data.ErrDuplicateCategoryName
		}
	}

	s.nextID++
	category.ID = s.nextID
	category.CreatedAt = time.Now()

	clone := *category
	s.categories = append(s.categories, &clone)
	return nil
}

func (s *stubCategoryStore) Get(_ context.Context, id int64) (*data.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (s *stubCategoryStore) GetAll(_ context.Context, _ data.Filters) ([]*data.Category, data.Metadata, error) {
	out := make([]*data.Category, len(s.categories))
	for i, c := range s.categories {
		clone := *c
		out[i] = &clone
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, data.Metadata{TotalRecords: len(out)}, nil
}

func (s *stubCategoryStore) Update(_ context.Context, category *data.Category) error {
	for i, c := range s.categories {
		if c.ID == category.ID {
			clone := *category
			s.categories[i] = &clone
			return nil
		}
	}
	return data.ErrRecordNotFound
}

func (s *stubCategoryStore) Delete(_ context.Context, id int64) error {
	for i, c := range s.categories {
		if c.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return data.ErrRecordNotFound
}

// stubStatsStore returns canned aggregates.
type stubStatsStore struct {
	snapshot data.Stats
	totals   data.Totals
}

func (s *stubStatsStore) Snapshot(_ context.Context) (*data.Stats, error) {
	clone := s.snapshot
	return &clone, nil
}

func (s *stubStatsStore) Totals(_ context.Context) (data.Totals, error) {
	return s.totals, nil
}
