package service

import (
	"github.com/emzola/prolibrary/data"
)

type catalog interface {
	Snapshot() State
	FilteredView() []*data.Book
	Loading() bool
	SearchTerm() string
	SetSearchTerm(term string)
	Draft() data.Draft
	SetDraft(draft data.Draft)
	OpenCreateForm()
	CloseCreateForm()
	DismissAlert()
}

// State is a read-only copy of what a presentation layer renders.
type State struct {
	Books          []*data.Book `json:"books"`
	Total          int          `json:"total"`
	Loading        bool         `json:"loading"`
	SearchTerm     string       `json:"search_term"`
	Draft          data.Draft   `json:"draft"`
	CreateFormOpen bool         `json:"create_form_open"`
	Alert          string       `json:"alert,omitempty"`
}

// Snapshot returns the current state with the books already filtered by the
// search term.
func (s *service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *service) snapshotLocked() State {
	return State{
		Books:          copyBooks(data.Filter(s.books, s.searchTerm)),
		Total:          len(s.books),
		Loading:        s.inflight > 0,
		SearchTerm:     s.searchTerm,
		Draft:          s.draft,
		CreateFormOpen: s.formOpen,
		Alert:          s.alert,
	}
}

// FilteredView returns the cached books whose title or author contains the
// search term, ignoring case. It never calls the remote store.
func (s *service) FilteredView() []*data.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBooks(data.Filter(s.books, s.searchTerm))
}

// Loading reports whether a refresh is in flight.
func (s *service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func (s *service) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

func (s *service) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()
	s.notify()
}

func (s *service) Draft() data.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *service) SetDraft(draft data.Draft) {
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
	s.notify()
}

func (s *service) OpenCreateForm() {
	s.mu.Lock()
	s.formOpen = true
	s.mu.Unlock()
	s.notify()
}

// CloseCreateForm hides the create form. The draft is kept so reopening the
// form shows what was typed.
func (s *service) CloseCreateForm() {
	s.mu.Lock()
	s.formOpen = false
	s.mu.Unlock()
	s.notify()
}

func (s *service) DismissAlert() {
	s.mu.Lock()
	s.alert = ""
	s.mu.Unlock()
	s.notify()
}

// copyBooks detaches the returned records from the cache.
func copyBooks(books []*data.Book) []*data.Book {
	out := make([]*data.Book, len(books))
	for i, book := range books {
		b := *book
		out[i] = &b
	}
	return out
}
