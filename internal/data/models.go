// internal/data/models.go
// Package data provides the entity types and database interaction logic
// for the library catalog.
package data

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tmejia-dev/library-catalog/internal/validator"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Register the postgres dialect with goqu.
)

// Sentinel errors returned by the model layer. Handlers translate these into
// the appropriate HTTP responses (404s and field-level validation errors).
var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrDuplicateISBN         = errors.New("duplicate isbn")
	ErrDuplicateCategoryName = errors.New("duplicate category name")
	ErrAuthorNotFound        = errors.New("author not found")
	ErrCategoryNotFound      = errors.New("category not found")
)

// BookStore is the persistence surface for book records.
type BookStore interface {
	Insert(ctx context.Context, book *Book) error
	Get(ctx context.Context, id int64) (*Book, error)
	GetAll(ctx context.Context, search BookFilters, filters Filters) ([]*Book, Metadata, error)
	Update(ctx context.Context, book *Book) error
	Delete(ctx context.Context, id int64) error
}

// AuthorStore is the persistence surface for author records.
type AuthorStore interface {
	Insert(ctx context.Context, author *Author) error
	Get(ctx context.Context, id int64) (*Author, error)
	GetAll(ctx context.Context, filters Filters) ([]*Author, Metadata, error)
	Update(ctx context.Context, author *Author) error
	Delete(ctx context.Context, id int64) error
}

// CategoryStore is the persistence surface for category records.
type CategoryStore interface {
	Insert(ctx context.Context, category *Category) error
	Get(ctx context.Context, id int64) (*Category, error)
	GetAll(ctx context.Context, filters Filters) ([]*Category, Metadata, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id int64) error
}

// StatsStore computes snapshot aggregates across the whole catalog.
type StatsStore interface {
	Snapshot(ctx context.Context) (*Stats, error)
	Totals(ctx context.Context) (Totals, error)
}

// Models is a top-level container that groups all model types together.
// It is passed around the application via applicationDependencies so every
// handler has access to the database without importing sql directly. The
// fields are interfaces so handler tests can substitute in-memory stubs.
type Models struct {
	Books      BookStore
	Authors    AuthorStore
	Categories CategoryStore
	Stats      StatsStore
}

// NewModels constructs a Models value wired up to the given database
// connection pool. Call this once during application startup.
func NewModels(db *sqlx.DB) Models {
	return Models{
		Books:      BookModel{DB: db},
		Authors:    AuthorModel{DB: db},
		Categories: CategoryModel{DB: db},
		Stats:      StatsModel{DB: db},
	}
}

// Filters holds the optional pagination and sorting parameters extracted
// from URL query strings. A zero PageSize means "no pagination": the full
// matching set is returned, which is the default contract for every listing.
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Records per page; 0 disables pagination
	Sort         string   // Column name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort values to prevent SQL injection
}

// sortColumn returns the validated column name for ORDER BY.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "id" // safe fallback
}

// sortDirection returns "ASC" or "DESC" based on the Sort prefix.
func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

// paginated reports whether a LIMIT/OFFSET should be applied at all.
func (f Filters) paginated() bool { return f.PageSize > 0 }

// limit returns the SQL LIMIT value derived from PageSize.
func (f Filters) limit() int { return f.PageSize }

// offset returns the SQL OFFSET value derived from Page and PageSize.
func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// ValidateFilters checks the pagination and sort parameters, accumulating
// any failures on v.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize >= 0, "page_size", "must be greater than or equal to zero")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")
	if f.Sort != "" {
		v.Check(validator.In(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
	}
}

// Metadata contains pagination information returned alongside list responses.
// When a listing is not paginated only TotalRecords is populated.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	if pageSize <= 0 {
		return Metadata{TotalRecords: totalRecords}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
