// cmd/api/handlers_meta.go
// This file contains the API overview and statistics handlers.
package main

import "net/http"

// apiOverviewHandler handles GET /api/.
// It combines the static endpoint directory with live top-level record
// counts, giving clients a single place to discover the API surface.
func (app *applicationDependencies) apiOverviewHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := app.models.Stats.Totals(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	overview := envelope{
		"api_overview": endpointDirectory["overview"],
		"books": envelope{
			"total_books":            totals.Books,
			"list_create":            endpointDirectory["books"],
			"detail":                 endpointDirectory["book_detail"],
			"search":                 endpointDirectory["search_books"],
			"filter_by_category":     endpointDirectory["filter_by_category"],
			"filter_by_availability": endpointDirectory["filter_by_availability"],
			"filter_by_author":       endpointDirectory["filter_by_author"],
		},
		"authors": envelope{
			"total_authors": totals.Authors,
			"list_create":   endpointDirectory["authors"],
			"detail":        endpointDirectory["author_detail"],
		},
		"categories": envelope{
			"total_categories": totals.Categories,
			"list_create":      endpointDirectory["categories"],
			"detail":           endpointDirectory["category_detail"],
		},
		"statistics": endpointDirectory["stats"],
	}

	err = app.writeJSON(w, http.StatusOK, overview, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// libraryStatsHandler handles GET /api/stats.
// The snapshot is recomputed from scratch on every call.
func (app *applicationDependencies) libraryStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.models.Stats.Snapshot(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
