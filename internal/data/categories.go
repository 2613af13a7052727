// internal/data/categories.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tmejia-dev/library-catalog/internal/validator"
)

// Category represents a single category record. TotalBooks is a point-in-time
// count of the books referencing this category, computed at read time.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalBooks  int64     `json:"total_books"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidateCategory checks the field-level rules for a category write.
// Name uniqueness is enforced by the database; a violation surfaces as
// ErrDuplicateCategoryName from Insert or Update.
func ValidateCategory(v *validator.Validator, category *Category) {
	v.Check(category.Name != "", "name", "must be provided")
	v.Check(len(category.Name) <= 50, "name", "must not be more than 50 characters long")
}

// CategoryModel wraps the database connection pool and provides methods for
// creating, reading, updating and deleting category records.
type CategoryModel struct {
	DB *sqlx.DB
}

// totalBooksForCategory is the correlated subquery computing the derived
// total_books field.
const totalBooksForCategory = `(SELECT count(*) FROM books b WHERE b.category_id = c.id)`

// Insert adds a new category record, writing the database-assigned id and
// created_at back into the struct.
func (m CategoryModel) Insert(ctx context.Context, category *Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := m.DB.QueryRowContext(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return mapCategoryWriteError(err)
	}

	return nil
}

// Get retrieves a single category by id, including the derived book count.
// Returns ErrRecordNotFound if no category with the given id exists.
func (m CategoryModel) Get(ctx context.Context, id int64) (*Category, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT c.id, c.name, c.description, ` + totalBooksForCategory + ` AS total_books, c.created_at
		FROM categories c
		WHERE c.id = $1`

	var category Category
	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.TotalBooks,
		&category.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &category, nil
}

// GetAll retrieves categories in alphabetical order. Pagination is applied
// only when filters asks for it.
func (m CategoryModel) GetAll(ctx context.Context, filters Filters) ([]*Category, Metadata, error) {
	ds := pgDialect.
		From(goqu.T("categories").As("c")).
		Select(
			goqu.L("count(*) OVER()"),
			goqu.I("c.id"), goqu.I("c.name"), goqu.I("c.description"),
			goqu.L(totalBooksForCategory).As("total_books"),
			goqu.I("c.created_at"),
		).
		Order(goqu.I("c.name").Asc(), goqu.I("c.id").Asc())

	if filters.paginated() {
		ds = ds.Limit(uint(filters.limit())).Offset(uint(filters.offset()))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	categories := []*Category{}

	for rows.Next() {
		var category Category
		err := rows.Scan(
			&totalRecords,
			&category.ID,
			&category.Name,
			&category.Description,
			&category.TotalBooks,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		categories = append(categories, &category)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return categories, metadata, nil
}

// Update saves the modified fields of category back to the database.
// Returns ErrRecordNotFound if the category no longer exists.
func (m CategoryModel) Update(ctx context.Context, category *Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2
		WHERE id = $3
		RETURNING id`

	err := m.DB.QueryRowContext(ctx, query, category.Name, category.Description, category.ID).
		Scan(&category.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return mapCategoryWriteError(err)
		}
	}

	return nil
}

// Delete removes the category with the given id. The books_category_id FK is
// declared ON DELETE SET NULL, so books referencing it are kept and simply
// become uncategorized. Returns ErrRecordNotFound if no matching record
// exists.
func (m CategoryModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// mapCategoryWriteError translates the unique-name constraint violation into
// the package sentinel error.
func mapCategoryWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) &&
		pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "categories_name_key" {
		return ErrDuplicateCategoryName
	}
	return err
}
