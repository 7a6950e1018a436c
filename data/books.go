package data

import (
	"strings"
	"time"

	"github.com/emzola/prolibrary/internal/validator"
)

// Status is the loan status of a book. A book is either on the shelf or lent out.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBorrowed  Status = "borrowed"
)

// Toggle returns the opposite loan status. Anything that is not available
// is treated as borrowed, so the result is always one of the two values.
func (s Status) Toggle() Status {
	if s == StatusAvailable {
		return StatusBorrowed
	}
	return StatusAvailable
}

// Book defines a book record as stored in the remote books table.
type Book struct {
	ID        int64     `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Title     string    `json:"title" yaml:"title"`
	Author    string    `json:"author" yaml:"author"`
	Isbn      string    `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Status    Status    `json:"status" yaml:"status"`
}

// Matches reports whether the book's title or author contains term,
// ignoring case. An empty term matches every book.
func (b *Book) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(b.Title), term) ||
		strings.Contains(strings.ToLower(b.Author), term)
}

// Draft holds the unsaved fields captured by the create form.
type Draft struct {
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Isbn   string `json:"isbn" yaml:"isbn,omitempty"`
}

// IsZero reports whether the draft is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// ValidateDraft checks the only two required fields of a new book.
func ValidateDraft(v *validator.Validator, draft Draft) {
	v.Check(draft.Title != "", "title", "must be provided")
	v.Check(draft.Author != "", "author", "must be provided")
}

// ValidateStatus checks that a status is one of the two loan states.
func ValidateStatus(v *validator.Validator, status Status) {
	v.Check(status != "", "status", "must be provided")
	v.Check(validator.PermittedValue(status, StatusAvailable, StatusBorrowed), "status", "must be available or borrowed")
}

// Filter returns the books matching term, preserving their order.
func Filter(books []*Book, term string) []*Book {
	filtered := make([]*Book, 0, len(books))
	for _, book := range books {
		if book.Matches(term) {
			filtered = append(filtered, book)
		}
	}
	return filtered
}
