// internal/data/inputs.go
// Write-representation types. These are the only fields a client may supply
// on create and update requests; ids, timestamps and the denormalized names
// are always server-computed.
package data

// BookInput holds the fields a client supplies when creating or fully
// replacing a book. Availability defaults to "available" when omitted.
type BookInput struct {
	Title           string   `json:"title"`
	AuthorID        int64    `json:"author"`
	CategoryID      *int64   `json:"category"`
	ISBN            string   `json:"isbn"`
	PublicationDate Date     `json:"publication_date"`
	Pages           int      `json:"pages"`
	Rating          *float64 `json:"rating"`
	Description     string   `json:"description"`
	Availability    string   `json:"availability"`
}

// Apply copies the input fields onto book, filling in the availability
// default for empty values.
func (in BookInput) Apply(book *Book) {
	book.Title = in.Title
	book.AuthorID = in.AuthorID
	book.CategoryID = in.CategoryID
	book.ISBN = in.ISBN
	book.PublicationDate = in.PublicationDate
	book.Pages = in.Pages
	book.Rating = in.Rating
	book.Description = in.Description
	book.Availability = in.Availability
	if book.Availability == "" {
		book.Availability = AvailabilityAvailable
	}
}

// BookUpdateInput holds the fields a client may supply when partially
// updating a book. Every field is a pointer so "not provided" (nil) can be
// told apart from "intentionally set to zero/empty"; only non-nil fields are
// applied.
//
// A JSON null decodes to the same nil pointer as an absent key, so a partial
// update cannot clear the nullable category and rating fields. Clients that
// want to drop them must send a full replacement (PUT), which resets any
// field the body omits.
type BookUpdateInput struct {
	Title           *string  `json:"title"`
	AuthorID        *int64   `json:"author"`
	CategoryID      *int64   `json:"category"`
	ISBN            *string  `json:"isbn"`
	PublicationDate *Date    `json:"publication_date"`
	Pages           *int     `json:"pages"`
	Rating          *float64 `json:"rating"`
	Description     *string  `json:"description"`
	Availability    *string  `json:"availability"`
}

// Apply copies the non-nil input fields onto book.
func (in BookUpdateInput) Apply(book *Book) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.AuthorID != nil {
		book.AuthorID = *in.AuthorID
	}
	if in.CategoryID != nil {
		book.CategoryID = in.CategoryID
	}
	if in.ISBN != nil {
		book.ISBN = *in.ISBN
	}
	if in.PublicationDate != nil {
		book.PublicationDate = *in.PublicationDate
	}
	if in.Pages != nil {
		book.Pages = *in.Pages
	}
	if in.Rating != nil {
		book.Rating = in.Rating
	}
	if in.Description != nil {
		book.Description = *in.Description
	}
	if in.Availability != nil {
		book.Availability = *in.Availability
	}
}

// AuthorInput holds the fields a client supplies when creating or fully
// replacing an author.
type AuthorInput struct {
	Name        string `json:"name"`
	BirthDate   *Date  `json:"birth_date"`
	Nationality string `json:"nationality"`
}

// Apply copies the input fields onto author.
func (in AuthorInput) Apply(author *Author) {
	author.Name = in.Name
	author.BirthDate = in.BirthDate
	author.Nationality = in.Nationality
}

// AuthorUpdateInput holds the fields a client may supply when partially
// updating an author; only non-nil fields are applied.
type AuthorUpdateInput struct {
	Name        *string `json:"name"`
	BirthDate   *Date   `json:"birth_date"`
	Nationality *string `json:"nationality"`
}

// Apply copies the non-nil input fields onto author.
func (in AuthorUpdateInput) Apply(author *Author) {
	if in.Name != nil {
		author.Name = *in.Name
	}
	if in.BirthDate != nil {
		author.BirthDate = in.BirthDate
	}
	if in.Nationality != nil {
		author.Nationality = *in.Nationality
	}
}

// CategoryInput holds the fields a client supplies when creating or fully
// replacing a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Apply copies the input fields onto category.
func (in CategoryInput) Apply(category *Category) {
	category.Name = in.Name
	category.Description = in.Description
}

// CategoryUpdateInput holds the fields a client may supply when partially
// updating a category; only non-nil fields are applied.
type CategoryUpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Apply copies the non-nil input fields onto category.
func (in CategoryUpdateInput) Apply(category *Category) {
	if in.Name != nil {
		category.Name = *in.Name
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
}
