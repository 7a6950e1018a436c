package repository

import (
	"context"
	"strconv"

	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/data/dto"
	"github.com/emzola/prolibrary/internal/postgrest"
)

type books interface {
	ListBooks(ctx context.Context) ([]*data.Book, error)
	InsertBook(ctx context.Context, row dto.InsertBookRow) error
	UpdateBookStatus(ctx context.Context, bookID int64, status data.Status) error
	DeleteBook(ctx context.Context, bookID int64) error
}

// ListBooks retrieves every book record, newest first.
func (r *repository) ListBooks(ctx context.Context) ([]*data.Book, error) {
	books := []*data.Book{}
	err := r.client.List(ctx, r.table, "created_at", false, &books)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// InsertBook creates a new book record. The server assigns the id, the
// creation time and the default status.
func (r *repository) InsertBook(ctx context.Context, row dto.InsertBookRow) error {
	return r.client.Insert(ctx, r.table, row)
}

// UpdateBookStatus sets the loan status of one book record.
func (r *repository) UpdateBookStatus(ctx context.Context, bookID int64, status data.Status) error {
	if bookID < 1 {
		return ErrRecordNotFound
	}
	n, err := r.client.Update(ctx, r.table, matchID(bookID), dto.UpdateStatusPatch{Status: status})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteBook deletes a book record.
func (r *repository) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID < 1 {
		return ErrRecordNotFound
	}
	n, err := r.client.Delete(ctx, r.table, matchID(bookID))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func matchID(bookID int64) postgrest.Match {
	return postgrest.Match{"id": strconv.FormatInt(bookID, 10)}
}
