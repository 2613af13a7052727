// cmd/api/handlers_books.go
// This file contains the HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and database models.
package main

import (
	"errors"
	"net/http"

	"github.com/tmejia-dev/library-catalog/internal/data"
	"github.com/tmejia-dev/library-catalog/internal/validator"
)

// bookSortSafeList is the set of sort values accepted by the books listing.
var bookSortSafeList = []string{
	"id", "title", "created_at",
	"-id", "-title", "-created_at",
}

// createBookHandler handles POST /api/books.
// It reads a JSON body containing the new book's details, validates it,
// inserts a record, and responds with the created book (including its
// database-assigned ID, timestamps and denormalized names) and 201 Created.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	// Decode the incoming JSON body using the safe readJSON helper.
	// readJSON enforces a 1MB limit, rejects unknown fields, and ensures a single value.
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book := &data.Book{}
	input.Apply(book)

	// Validate before touching the database so clients get explicit
	// field-level errors instead of raw constraint violations.
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Insert(r.Context(), book)
	if err != nil {
		app.bookWriteErrorResponse(w, r, err)
		return
	}

	// Re-fetch the record so the response carries the denormalized author
	// and category names computed by the read query.
	created, err := app.models.Books.Get(r.Context(), book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"book": created}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /api/books/:id.
// Responds 404 if no book with that ID exists.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /api/books.
// The search, category, availability and author query parameters are all
// optional and combine conjunctively; page, page_size and sort are optional
// extensions, and without them the full matching set is returned newest
// first.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	search := data.BookFilters{
		Search:       app.readString(qs, "search", ""),
		Category:     app.readString(qs, "category", ""),
		Availability: app.readString(qs, "availability", ""),
		Author:       app.readString(qs, "author", ""),
	}

	filters := data.Filters{
		Page:         app.readInt(qs, "page", 1),
		PageSize:     app.readInt(qs, "page_size", 0),
		Sort:         app.readString(qs, "sort", "-created_at"),
		SortSafeList: bookSortSafeList,
	}

	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, metadata, err := app.models.Books.GetAll(r.Context(), search, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// replaceBookHandler handles PUT /api/books/:id.
// It reads a full write representation, overwrites every client-writable
// field of the existing book, and saves the result. Responds 404 if the book
// does not exist.
func (app *applicationDependencies) replaceBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.BookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	input.Apply(book)
	app.saveBook(w, r, book)
}

// updateBookHandler handles PATCH /api/books/:id.
// It reads a partial JSON body, applies only the non-nil fields onto the
// existing book, and saves the result. Responds 404 if the book does not
// exist.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.BookUpdateInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	input.Apply(book)
	app.saveBook(w, r, book)
}

// saveBook validates and persists an updated book, re-reads it so the
// denormalized names reflect any author or category change, and writes the
// 200 response. Shared by the PUT and PATCH handlers.
func (app *applicationDependencies) saveBook(w http.ResponseWriter, r *http.Request, book *data.Book) {
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err := app.models.Books.Update(r.Context(), book)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.bookWriteErrorResponse(w, r, err)
		return
	}

	updated, err := app.models.Books.Get(r.Context(), book.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": updated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /api/books/:id.
// Responds 404 if no book with that ID exists.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Books.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// bookWriteErrorResponse maps the constraint-violation sentinels a book
// write can return onto field-level validation errors, falling back to a 500
// for anything unexpected.
func (app *applicationDependencies) bookWriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	v := validator.New()

	switch {
	case errors.Is(err, data.ErrDuplicateISBN):
		v.AddError("isbn", "a book with this ISBN already exists")
		app.failedValidationResponse(w, r, v.Errors)
	case errors.Is(err, data.ErrAuthorNotFound):
		v.AddError("author", "must reference an existing author")
		app.failedValidationResponse(w, r, v.Errors)
	case errors.Is(err, data.ErrCategoryNotFound):
		v.AddError("category", "must reference an existing category")
		app.failedValidationResponse(w, r, v.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
