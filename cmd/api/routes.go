// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// endpointDirectory is the static name → path-template table served by the
// API overview endpoint. It is resolved once at startup rather than reverse-
// engineered from the router; every path here must match a registration in
// routes exactly, since httprouter redirects rather than serves near-misses.
var endpointDirectory = map[string]string{
	"overview":               "/api/",
	"books":                  "/api/books",
	"book_detail":            "/api/books/:id",
	"search_books":           "/api/books?search=<query>",
	"filter_by_category":     "/api/books?category=<category_name>",
	"filter_by_availability": "/api/books?availability=<status>",
	"filter_by_author":       "/api/books?author=<author_name>",
	"authors":                "/api/authors",
	"author_detail":          "/api/authors/:id",
	"categories":             "/api/categories",
	"category_detail":        "/api/categories/:id",
	"stats":                  "/api/stats",
}

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the recoverPanic, rateLimit and requestID middlewares.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → requestID → router
//
// Every endpoint is public except POST /api/authors, which requires a bearer
// token carrying an admin claim.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	// Overview and statistics
	router.HandlerFunc(http.MethodGet, "/api/", app.apiOverviewHandler)
	router.HandlerFunc(http.MethodGet, "/api/stats", app.libraryStatsHandler)

	// Book CRUD routes
	router.HandlerFunc(http.MethodGet, "/api/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/api/books", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/api/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPut, "/api/books/:id", app.replaceBookHandler)
	router.HandlerFunc(http.MethodPatch, "/api/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/api/books/:id", app.deleteBookHandler)

	// Author CRUD routes; creation is restricted to administrative callers.
	router.HandlerFunc(http.MethodGet, "/api/authors", app.listAuthorsHandler)
	router.HandlerFunc(http.MethodPost, "/api/authors", app.requireAdmin(app.createAuthorHandler))
	router.HandlerFunc(http.MethodGet, "/api/authors/:id", app.showAuthorHandler)
	router.HandlerFunc(http.MethodPut, "/api/authors/:id", app.replaceAuthorHandler)
	router.HandlerFunc(http.MethodPatch, "/api/authors/:id", app.updateAuthorHandler)
	router.HandlerFunc(http.MethodDelete, "/api/authors/:id", app.deleteAuthorHandler)

	// Category CRUD routes
	router.HandlerFunc(http.MethodGet, "/api/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodPost, "/api/categories", app.createCategoryHandler)
	router.HandlerFunc(http.MethodGet, "/api/categories/:id", app.showCategoryHandler)
	router.HandlerFunc(http.MethodPut, "/api/categories/:id", app.replaceCategoryHandler)
	router.HandlerFunc(http.MethodPatch, "/api/categories/:id", app.updateCategoryHandler)
	router.HandlerFunc(http.MethodDelete, "/api/categories/:id", app.deleteCategoryHandler)

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from the other middlewares and the router alike.
	return app.recoverPanic(app.rateLimit(app.requestID(router)))
}
