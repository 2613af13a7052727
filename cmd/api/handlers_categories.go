// cmd/api/handlers_categories.go
// This file contains the HTTP request handlers for the categories resource.
package main

import (
	"errors"
	"net/http"

	"github.com/tmejia-dev/library-catalog/internal/data"
	"github.com/tmejia-dev/library-catalog/internal/validator"
)

// createCategoryHandler handles POST /api/categories.
func (app *applicationDependencies) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CategoryInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category := &data.Category{}
	input.Apply(category)

	v := validator.New()
	if data.ValidateCategory(v, category); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Categories.Insert(r.Context(), category)
	if err != nil {
		app.categoryWriteErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showCategoryHandler handles GET /api/categories/:id.
// Responds 404 if no category with that ID exists.
func (app *applicationDependencies) showCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.models.Categories.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listCategoriesHandler handles GET /api/categories.
// Categories come back in alphabetical order; page and page_size are optional
// and without them the full set is returned.
func (app *applicationDependencies) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:     app.readInt(qs, "page", 1),
		PageSize: app.readInt(qs, "page_size", 0),
	}

	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	categories, metadata, err := app.models.Categories.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"categories": categories, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// replaceCategoryHandler handles PUT /api/categories/:id.
func (app *applicationDependencies) replaceCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.CategoryInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.models.Categories.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	input.Apply(category)
	app.saveCategory(w, r, category)
}

// updateCategoryHandler handles PATCH /api/categories/:id.
// Only the non-nil fields from the request body are applied.
func (app *applicationDependencies) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input data.CategoryUpdateInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.models.Categories.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	input.Apply(category)
	app.saveCategory(w, r, category)
}

// saveCategory validates and persists an updated category and writes the 200
// response. Shared by the PUT and PATCH handlers.
func (app *applicationDependencies) saveCategory(w http.ResponseWriter, r *http.Request, category *data.Category) {
	v := validator.New()
	if data.ValidateCategory(v, category); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err := app.models.Categories.Update(r.Context(), category)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.categoryWriteErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteCategoryHandler handles DELETE /api/categories/:id.
// Books referencing the category are kept; their category simply becomes
// null. Responds 404 if no category with that ID exists.
func (app *applicationDependencies) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Categories.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "category successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// categoryWriteErrorResponse maps the duplicate-name sentinel onto a field
// error, falling back to a 500 for anything unexpected.
func (app *applicationDependencies) categoryWriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, data.ErrDuplicateCategoryName) {
		v := validator.New()
		v.AddError("name", "a category with this name already exists")
		app.failedValidationResponse(w, r, v.Errors)
		return
	}
	app.serverErrorResponse(w, r, err)
}
