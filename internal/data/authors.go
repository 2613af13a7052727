// internal/data/authors.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/tmejia-dev/library-catalog/internal/validator"
)

// Author represents a single author record. TotalBooks is a read-only derived
// field: a point-in-time count of the books referencing this author, computed
// by a correlated subquery at read time rather than stored.
type Author struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	BirthDate   *Date     `json:"birth_date"`
	Nationality string    `json:"nationality"`
	TotalBooks  int64     `json:"total_books"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateAuthor checks the field-level rules for an author write.
func ValidateAuthor(v *validator.Validator, author *Author) {
	v.Check(author.Name != "", "name", "must be provided")
	v.Check(len(author.Name) <= 100, "name", "must not be more than 100 characters long")
	v.Check(len(author.Nationality) <= 50, "nationality", "must not be more than 50 characters long")
}

// AuthorModel wraps the database connection pool and provides methods for
// creating, reading, updating and deleting author records.
type AuthorModel struct {
	DB *sqlx.DB
}

// totalBooksForAuthor is the correlated subquery computing the derived
// total_books field.
const totalBooksForAuthor = `(SELECT count(*) FROM books b WHERE b.author_id = a.id)`

// Insert adds a new author record, writing the database-assigned id and
// timestamps back into the struct.
func (m AuthorModel) Insert(ctx context.Context, author *Author) error {
	query := `
		INSERT INTO authors (name, birth_date, nationality)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return m.DB.QueryRowContext(ctx, query, author.Name, author.BirthDate, author.Nationality).
		Scan(&author.ID, &author.CreatedAt, &author.UpdatedAt)
}

// Get retrieves a single author by id, including the derived book count.
// Returns ErrRecordNotFound if no author with the given id exists.
func (m AuthorModel) Get(ctx context.Context, id int64) (*Author, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT a.id, a.name, a.birth_date, a.nationality, ` + totalBooksForAuthor + ` AS total_books,
		       a.created_at, a.updated_at
		FROM authors a
		WHERE a.id = $1`

	var (
		author    Author
		birthDate sql.NullTime
	)

	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&author.ID,
		&author.Name,
		&birthDate,
		&author.Nationality,
		&author.TotalBooks,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	author.setBirthDate(birthDate)
	return &author, nil
}

// GetAll retrieves authors in alphabetical order. Pagination is applied only
// when filters asks for it.
func (m AuthorModel) GetAll(ctx context.Context, filters Filters) ([]*Author, Metadata, error) {
	ds := pgDialect.
		From(goqu.T("authors").As("a")).
		Select(
			goqu.L("count(*) OVER()"),
			goqu.I("a.id"), goqu.I("a.name"), goqu.I("a.birth_date"), goqu.I("a.nationality"),
			goqu.L(totalBooksForAuthor).As("total_books"),
			goqu.I("a.created_at"), goqu.I("a.updated_at"),
		).
		Order(goqu.I("a.name").Asc(), goqu.I("a.id").Asc())

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
	authors := []*Author{}

	for rows.Next() {
		var (
			author    Author
			birthDate sql.NullTime
		)

		err := rows.Scan(
			&totalRecords,
			&author.ID,
			&author.Name,
			&birthDate,
			&author.Nationality,
			&author.TotalBooks,
			&author.CreatedAt,
			&author.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}

		author.setBirthDate(birthDate)
		authors = append(authors, &author)
	}

	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return authors, metadata, nil
}

// setBirthDate copies a scanned nullable birth_date column onto the author.
func (a *Author) setBirthDate(birthDate sql.NullTime) {
	if birthDate.Valid {
		a.BirthDate = &Date{Time: birthDate.Time}
	}
}

// Update saves the modified fields of author back to the database.
// Returns ErrRecordNotFound if the author no longer exists.
func (m AuthorModel) Update(ctx context.Context, author *Author) error {
	query := `
		UPDATE authors
		SET name = $1, birth_date = $2, nationality = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`

	err := m.DB.QueryRowContext(ctx, query, author.Name, author.BirthDate, author.Nationality, author.ID).
		Scan(&author.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// Delete removes the author with the given id. The books_author_id FK is
// declared ON DELETE CASCADE, so the author's books are removed with them.
// Returns ErrRecordNotFound if no matching record exists.
func (m AuthorModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
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
