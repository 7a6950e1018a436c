package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/data/dto"
	"github.com/emzola/prolibrary/internal/validator"
	"github.com/emzola/prolibrary/repository"
)

type books interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft data.Draft) error
	ToggleStatus(ctx context.Context, bookID int64, current data.Status) error
	Remove(ctx context.Context, bookID int64, confirm Confirmer) (bool, error)
}

// Refresh re-fetches the whole books table and replaces the cached list.
// On failure the previous list is kept and the error is logged.
func (s *service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	seq := s.beginRefreshLocked()
	s.mu.Unlock()
	s.notify()
	return s.finishRefresh(ctx, seq)
}

// beginRefreshLocked marks a refresh as in flight and returns its sequence
// number. s.mu must be held.
func (s *service) beginRefreshLocked() uint64 {
	s.issued++
	s.inflight++
	return s.issued
}

// finishRefresh lists the remote rows and applies them unless a refresh
// issued later has already been applied.
func (s *service) finishRefresh(ctx context.Context, seq uint64) error {
	books, err := s.repo.ListBooks(ctx)
	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return err
	}
	if err == nil && seq > s.applied {
		s.books = books
		s.applied = seq
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.PrintError(err, map[string]string{"operation": "refresh"})
		err = fmt.Errorf("%w: %w", ErrRemote, err)
	}
	s.notify()
	return err
}

// Create inserts a new book from draft. A draft without title or author is
// rejected before any remote call. On success the draft is cleared, the
// create form closed and the catalog refreshed. On failure the draft is kept
// and the error is surfaced through the alert.
func (s *service) Create(ctx context.Context, draft data.Draft) error {
	v := validator.New()
	if data.ValidateDraft(v, draft); !v.Valid() {
		return s.failedValidation(v.Errors)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()
	row := dto.InsertBookRow{
		Title:    draft.Title,
		Author:   draft.Author,
		Isbn:     draft.Isbn,
		CoverURL: s.config.Catalog.DefaultCoverURL,
	}
	err := s.repo.InsertBook(ctx, row)
	if err != nil {
		s.logger.PrintError(err, map[string]string{"operation": "create", "title": draft.Title})
		s.mu.Lock()
		if !s.closed {
			s.draft = draft
			s.alert = "failed to add book: " + err.Error()
		}
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("%w: %w", ErrRemote, err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.draft = data.Draft{}
	s.formOpen = false
	s.alert = ""
	s.mu.Unlock()
	s.Refresh(ctx)
	return nil
}

// ToggleStatus flips the loan status of one book from current to its
// opposite. Nothing changes locally until the following refresh.
func (s *service) ToggleStatus(ctx context.Context, bookID int64, current data.Status) error {
	v := validator.New()
	if data.ValidateStatus(v, current); !v.Valid() {
		return s.failedValidation(v.Errors)
	}
	if s.isClosed() {
		return ErrClosed
	}
	err := s.repo.UpdateBookStatus(ctx, bookID, current.Toggle())
	if err != nil {
		s.logger.PrintError(err, map[string]string{"operation": "toggle_status", "book_id": strconv.FormatInt(bookID, 10)})
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return fmt.Errorf("%w: %w", ErrRemote, err)
		}
	}
	s.Refresh(ctx)
	return nil
}

// Remove deletes one book after confirm agrees. A declined confirmation is
// not an error; it reports false and sends nothing.
func (s *service) Remove(ctx context.Context, bookID int64, confirm Confirmer) (bool, error) {
	if s.isClosed() {
		return false, ErrClosed
	}
	if confirm == nil || !confirm.Confirm(ctx, s.removePrompt(bookID)) {
		return false, nil
	}
	err := s.repo.DeleteBook(ctx, bookID)
	if err != nil {
		s.logger.PrintError(err, map[string]string{"operation": "remove", "book_id": strconv.FormatInt(bookID, 10)})
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return false, ErrRecordNotFound
		default:
			return false, fmt.Errorf("%w: %w", ErrRemote, err)
		}
	}
	s.Refresh(ctx)
	return true, nil
}

func (s *service) removePrompt(bookID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, book := range s.books {
		if book.ID == bookID {
			return fmt.Sprintf("Delete %q by %s? This cannot be undone.", book.Title, book.Author)
		}
	}
	return fmt.Sprintf("Delete book %d? This cannot be undone.", bookID)
}

func (s *service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
