// internal/data/stats.go
// This file contains the statistics aggregator. Every call recomputes the
// snapshot from scratch with a handful of aggregate queries; nothing is
// cached or incrementally maintained.
package data

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

// Stats is the catalog-wide snapshot returned by the statistics endpoint.
type Stats struct {
	TotalBooks          int64            `json:"total_books"`
	AvailableBooks      int64            `json:"available_books"`
	BorrowedBooks       int64            `json:"borrowed_books"`
	TotalAuthors        int64            `json:"total_authors"`
	TotalCategories     int64            `json:"total_categories"`
	BooksByCategory     map[string]int64 `json:"books_by_category"`
	BooksByAvailability map[string]int64 `json:"books_by_availability"`
}

// Totals carries the three top-level record counts shown on the API overview.
type Totals struct {
	Books      int64
	Authors    int64
	Categories int64
}

// StatsModel computes snapshot aggregates over the whole catalog.
type StatsModel struct {
	DB *sqlx.DB
}

// Totals returns the record count of each table.
func (m StatsModel) Totals(ctx context.Context) (Totals, error) {
	var totals Totals

	err := m.DB.GetContext(ctx, &totals.Books, `SELECT count(*) FROM books`)
	if err != nil {
		return Totals{}, err
	}
	err = m.DB.GetContext(ctx, &totals.Authors, `SELECT count(*) FROM authors`)
	if err != nil {
		return Totals{}, err
	}
	err = m.DB.GetContext(ctx, &totals.Categories, `SELECT count(*) FROM categories`)
	if err != nil {
		return Totals{}, err
	}

	return totals, nil
}

// Snapshot computes the full statistics summary. The individual aggregate
// queries are not wrapped in a transaction, so the counts may straddle
// concurrent writes; the statistics use case is read-mostly and tolerates
// that.
//
// BooksByCategory maps every existing category name to its book count,
// including categories with zero books. Books with no category are absent
// from this mapping on purpose, matching the endpoint's historical shape.
func (m StatsModel) Snapshot(ctx context.Context) (*Stats, error) {
	totals, err := m.Totals(ctx)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		TotalBooks:      totals.Books,
		TotalAuthors:    totals.Authors,
		TotalCategories: totals.Categories,
	}

	stats.BooksByCategory, err = m.booksByCategory(ctx)
	if err != nil {
		return nil, err
	}

	stats.BooksByAvailability, err = m.booksByAvailability(ctx)
	if err != nil {
		return nil, err
	}

	// The headline availability counts come from the same grouped scan.
	stats.AvailableBooks = stats.BooksByAvailability[availabilityChoices[0].label]
	stats.BorrowedBooks = stats.BooksByAvailability[availabilityChoices[1].label]

	return &stats, nil
}

// booksByCategory counts books grouped by category name. The left join keeps
// zero-book categories in the result.
func (m StatsModel) booksByCategory(ctx context.Context) (map[string]int64, error) {
	query, args, err := pgDialect.
		From(goqu.T("categories").As("c")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.category_id").Eq(goqu.I("c.id")))).
		Select(goqu.I("c.name"), goqu.COUNT(goqu.I("b.id"))).
		GroupBy(goqu.I("c.name")).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}

	return counts, rows.Err()
}

// booksByAvailability counts books grouped by availability, keyed by the
// display label. All three states always appear, even with a zero count.
func (m StatsModel) booksByAvailability(ctx context.Context) (map[string]int64, error) {
	query, args, err := pgDialect.
		From("books").
		Select(goqu.I("availability"), goqu.COUNT(goqu.Star())).
		GroupBy(goqu.I("availability")).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byValue := map[string]int64{}
	for rows.Next() {
		var (
			value string
			count int64
		)
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		byValue[value] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, choice := range availabilityChoices {
		counts[choice.label] = byValue[choice.value]
	}

	return counts, nil
}
