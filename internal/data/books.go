// internal/data/books.go
// This file contains the Book entity, its validation rules, and the
// BookModel which issues every book-related query. Listing queries are
// composed dynamically with goqu so each request-supplied filter becomes
// one more predicate ANDed onto the base relation.
package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tmejia-dev/library-catalog/internal/validator"
)

// pgDialect builds SQL in the postgres dialect (placeholders, quoting).
var pgDialect = goqu.Dialect("postgres")

// Availability states a book can be in.
const (
	AvailabilityAvailable   = "available"
	AvailabilityBorrowed    = "borrowed"
	AvailabilityMaintenance = "maintenance"
)

// availabilityChoice pairs an availability value with its display label.
// The slice fixes the order the labels appear in the statistics mapping.
type availabilityChoice struct {
	value string
	label string
}

var availabilityChoices = []availabilityChoice{
	{AvailabilityAvailable, "Available"},
	{AvailabilityBorrowed, "Borrowed"},
	{AvailabilityMaintenance, "Under Maintenance"},
}

// Book represents a single book record joined with its author and, when set,
// its category. AuthorName and CategoryName are denormalized read-only fields
// computed by the joins; they are never written back.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	AuthorID        int64     `json:"author"`
	AuthorName      string    `json:"author_name"`
	CategoryID      *int64    `json:"category"`
	CategoryName    *string   `json:"category_name"`
	ISBN            string    `json:"isbn"`
	PublicationDate Date      `json:"publication_date"`
	Pages           int       `json:"pages"`
	Rating          *float64  `json:"rating"`
	Description     string    `json:"description"`
	Availability    string    `json:"availability"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidateBook checks every field-level rule for a book write, accumulating
// failures on v. It runs before any insert or update reaches the database so
// clients get an explicit field error rather than a raw constraint violation.
func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 200, "title", "must not be more than 200 characters long")

	v.Check(book.AuthorID > 0, "author", "must be a valid author id")

	v.Check(book.ISBN != "", "isbn", "must be provided")
	v.Check(len(book.ISBN) == 10 || len(book.ISBN) == 13, "isbn", "must be 10 or 13 characters long")

	v.Check(!book.PublicationDate.IsZero(), "publication_date", "must be provided")

	v.Check(book.Pages >= 1, "pages", "must be at least 1")

	if book.Rating != nil {
		v.Check(*book.Rating >= 0 && *book.Rating <= 5, "rating", "must be between 0 and 5")
	}

	v.Check(
		validator.In(book.Availability, AvailabilityAvailable, AvailabilityBorrowed, AvailabilityMaintenance),
		"availability", "must be one of available, borrowed or maintenance",
	)
}

// BookFilters holds the optional search and filter parameters for a book
// listing. Empty fields contribute no predicate at all; supplied fields are
// combined conjunctively.
type BookFilters struct {
	Search       string // Case-insensitive substring over title, author name and ISBN
	Category     string // Case-insensitive exact match on the category name
	Availability string // Case-sensitive exact match; unknown values simply match nothing
	Author       string // Case-insensitive substring over the author name
}

// likeEscaper neutralizes the LIKE metacharacters in user-supplied text so
// substring filters match them literally. Backslash is postgres' default
// escape character and must itself be escaped first.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching text as a literal
// substring.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// expressions translates the supplied filters into goqu predicates. The
// returned slice is empty when no filter was supplied, so the base query is
// left untouched.
func (f BookFilters) expressions() []goqu.Expression {
	exprs := []goqu.Expression{}

	if f.Search != "" {
		pattern := containsPattern(f.Search)
		exprs = append(exprs, goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("a.name").ILike(pattern),
			goqu.I("b.isbn").ILike(pattern),
		))
	}

	if f.Category != "" {
		exprs = append(exprs, goqu.L("LOWER(c.name)").Eq(strings.ToLower(f.Category)))
	}

	if f.Availability != "" {
		exprs = append(exprs, goqu.I("b.availability").Eq(f.Availability))
	}

	if f.Author != "" {
		exprs = append(exprs, goqu.I("a.name").ILike(containsPattern(f.Author)))
	}

	return exprs
}

// BookModel wraps the database connection pool and provides methods for
// creating, reading, updating and deleting book records.
type BookModel struct {
	DB *sqlx.DB
}

// bookColumns is the joined projection shared by Get and the listing query.
const bookColumns = `
	b.id, b.title, b.author_id, a.name AS author_name,
	b.category_id, c.name AS category_name,
	b.isbn, b.publication_date, b.pages, b.rating, b.description,
	b.availability, b.created_at, b.updated_at`

// listQuery builds the filtered, ordered listing statement. It is split out
// from GetAll so the generated SQL can be inspected in tests without a
// database connection.
func (m BookModel) listQuery(search BookFilters, filters Filters) (string, []any, error) {
	ds := pgDialect.
		From(goqu.T("books").As("b")).
		Join(goqu.T("authors").As("a"), goqu.On(goqu.I("b.author_id").Eq(goqu.I("a.id")))).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("b.category_id").Eq(goqu.I("c.id")))).
		Select(
			goqu.L("count(*) OVER()"),
			goqu.I("b.id"), goqu.I("b.title"),
			goqu.I("b.author_id"), goqu.I("a.name").As("author_name"),
			goqu.I("b.category_id"), goqu.I("c.name").As("category_name"),
			goqu.I("b.isbn"), goqu.I("b.publication_date"), goqu.I("b.pages"),
			goqu.I("b.rating"), goqu.I("b.description"), goqu.I("b.availability"),
			goqu.I("b.created_at"), goqu.I("b.updated_at"),
		).
		Where(search.expressions()...)

	// Default order is newest first; the id tie-break keeps the order
	// deterministic for books created in the same instant.
	orderCol := goqu.I("b." + filters.sortColumn())
	order := orderCol.Asc()
	if filters.sortDirection() == "DESC" {
		order = orderCol.Desc()
	}
	ds = ds.Order(order, goqu.I("b.id").Asc())

	if filters.paginated() {
		ds = ds.Limit(uint(filters.limit())).Offset(uint(filters.offset()))
	}

	return ds.Prepared(true).ToSQL()
}

// GetAll retrieves the books matching the supplied filters, newest first.
// When filters requests pagination the result is a single page plus full
// Metadata; otherwise the complete matching set is returned.
func (m BookModel) GetAll(ctx context.Context, search BookFilters, filters Filters) ([]*Book, Metadata, error) {
	query, args, err := m.listQuery(search, filters)
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	books := []*Book{}

	for rows.Next() {
		var (
			book         Book
			categoryID   sql.NullInt64
			categoryName sql.NullString
			rating       sql.NullFloat64
		)

		err := rows.Scan(
			&totalRecords, // count(*) OVER() – same value on every row
			&book.ID,
			&book.Title,
			&book.AuthorID,
			&book.AuthorName,
			&categoryID,
			&categoryName,
			&book.ISBN,
			&book.PublicationDate,
			&book.Pages,
			&rating,
			&book.Description,
			&book.Availability,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}

		book.setNullableColumns(categoryID, categoryName, rating)
		books = append(books, &book)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// Get retrieves a single book by its primary key, joined with its author and
// category. Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT` + bookColumns + `
		FROM books b
		INNER JOIN authors a ON b.author_id = a.id
		LEFT JOIN categories c ON b.category_id = c.id
		WHERE b.id = $1`

	var (
		book         Book
		categoryID   sql.NullInt64
		categoryName sql.NullString
		rating       sql.NullFloat64
	)

	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.AuthorID,
		&book.AuthorName,
		&categoryID,
		&categoryName,
		&book.ISBN,
		&book.PublicationDate,
		&book.Pages,
		&rating,
		&book.Description,
		&book.Availability,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	book.setNullableColumns(categoryID, categoryName, rating)
	return &book, nil
}

// setNullableColumns copies the scanned nullable columns onto the book,
// leaving the pointer fields nil for NULLs.
func (b *Book) setNullableColumns(categoryID sql.NullInt64, categoryName sql.NullString, rating sql.NullFloat64) {
	if categoryID.Valid {
		v := categoryID.Int64
		b.CategoryID = &v
	}
	if categoryName.Valid {
		v := categoryName.String
		b.CategoryName = &v
	}
	if rating.Valid {
		v := rating.Float64
		b.Rating = &v
	}
}

// Insert adds a new book record to the database. After a successful insert
// the database-assigned id, created_at and updated_at values are written back
// into the book struct. Constraint violations are mapped onto the package
// sentinel errors so handlers can report them as field errors.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, author_id, category_id, isbn, publication_date, pages, rating, description, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	args := []any{
		book.Title,
		book.AuthorID,
		book.CategoryID,
		book.ISBN,
		book.PublicationDate,
		book.Pages,
		book.Rating,
		book.Description,
		book.Availability,
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return mapBookWriteError(err)
	}

	return nil
}

// Update saves the modified fields of book back to the database and refreshes
// the updated_at timestamp. Returns ErrRecordNotFound if the book no longer
// exists.
func (m BookModel) Update(ctx context.Context, book *Book) error {
	query := `
		UPDATE books
		SET title = $1, author_id = $2, category_id = $3, isbn = $4, publication_date = $5,
		    pages = $6, rating = $7, description = $8, availability = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at`

	args := []any{
		book.Title,
		book.AuthorID,
		book.CategoryID,
		book.ISBN,
		book.PublicationDate,
		book.Pages,
		book.Rating,
		book.Description,
		book.Availability,
		book.ID,
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&book.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return mapBookWriteError(err)
		}
	}

	return nil
}

// Delete removes the book with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
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

// mapBookWriteError translates the postgres constraint violations a book
// write can trip into the package sentinel errors.
func mapBookWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch {
	case pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "books_isbn_key":
		return ErrDuplicateISBN
	case pqErr.Code.Name() == "foreign_key_violation" && pqErr.Constraint == "books_author_id_fkey":
		return ErrAuthorNotFound
	case pqErr.Code.Name() == "foreign_key_violation" && pqErr.Constraint == "books_category_id_fkey":
		return ErrCategoryNotFound
	}

	return err
}
