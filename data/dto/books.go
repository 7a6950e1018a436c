package dto

import "github.com/emzola/prolibrary/data"

// InsertBookRow defines the row sent to the remote table when a book is created.
// Status is deliberately absent so the table default applies.
type InsertBookRow struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Isbn     string `json:"isbn,omitempty"`
	CoverURL string `json:"cover_url"`
}

// UpdateStatusPatch defines the patch sent when a book's loan status changes.
type UpdateStatusPatch struct {
	Status data.Status `json:"status"`
}

// CreateBookRequestBody defines the request body for the create book handler.
// All fields are optional; a nil body falls back to the stored draft.
type CreateBookRequestBody struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Isbn   *string `json:"isbn"`
}

// ToggleStatusRequestBody carries the status the client currently sees.
type ToggleStatusRequestBody struct {
	Status data.Status `json:"status"`
}

// SearchRequestBody defines the request body for setting the search term.
type SearchRequestBody struct {
	Term string `json:"term"`
}
