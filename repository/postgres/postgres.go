// Package postgres implements the books repository directly against the
// hosted Postgres database, bypassing the PostgREST interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emzola/prolibrary/config"
	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/data/dto"
	"github.com/emzola/prolibrary/repository"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// OpenDBConn creates a PostgreSQL database connection pool.
func OpenDBConn(cfg config.Config) (*sql.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("postgres: DSN is not configured")
	}
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	duration, err := time.ParseDuration(cfg.Database.MaxIdleTime)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxIdleTime(duration)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Repository reads and writes book records with SQL.
type Repository struct {
	db    *sql.DB
	table string
}

// New creates a Repository over db using the given table.
func New(db *sql.DB, table string) *Repository {
	return &Repository{db: db, table: pq.QuoteIdentifier(table)}
}

// ListBooks retrieves every book record, newest first.
func (r *Repository) ListBooks(ctx context.Context) ([]*data.Book, error) {
	query := fmt.Sprintf(`
		SELECT id, created_at, title, author, COALESCE(isbn, ''), COALESCE(cover_url, ''), status
		FROM %s
		ORDER BY created_at DESC`, r.table)
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := rows.Scan(
			&book.ID,
			&book.CreatedAt,
			&book.Title,
			&book.Author,
			&book.Isbn,
			&book.CoverURL,
			&book.Status,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// InsertBook creates a new book record. Status and timestamps come from the
// column defaults.
func (r *Repository) InsertBook(ctx context.Context, row dto.InsertBookRow) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, author, isbn, cover_url)
		VALUES ($1, $2, NULLIF($3, ''), $4)`, r.table)
	args := []any{row.Title, row.Author, row.Isbn, row.CoverURL}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// UpdateBookStatus sets the loan status of one book record.
func (r *Repository) UpdateBookStatus(ctx context.Context, bookID int64, status data.Status) error {
	if bookID < 1 {
		return repository.ErrRecordNotFound
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1
		WHERE id = $2`, r.table)
	return r.exec(ctx, query, string(status), bookID)
}

// DeleteBook deletes a book record.
func (r *Repository) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID < 1 {
		return repository.ErrRecordNotFound
	}
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1`, r.table)
	return r.exec(ctx, query, bookID)
}

// exec runs a statement that must touch at least one row.
func (r *Repository) exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}
