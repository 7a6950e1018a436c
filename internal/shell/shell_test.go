package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emzola/prolibrary/config"
	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/data/dto"
	"github.com/emzola/prolibrary/internal/jsonlog"
	"github.com/emzola/prolibrary/repository"
	"github.com/emzola/prolibrary/service"
)

type memoryRepository struct {
	mu      sync.Mutex
	rows    []data.Book
	nextID  int64
	deletes int
}

func (m *memoryRepository) ListBooks(ctx context.Context) ([]*data.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := make([]*data.Book, len(m.rows))
	for i := range m.rows {
		b := m.rows[i]
		books[i] = &b
	}
	return books, nil
}

func (m *memoryRepository) InsertBook(ctx context.Context, row dto.InsertBookRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.rows = append([]data.Book{{ID: m.nextID, CreatedAt: time.Now(), Title: row.Title, Author: row.Author, Isbn: row.Isbn, CoverURL: row.CoverURL, Status: data.StatusAvailable}}, m.rows...)
	return nil
}

func (m *memoryRepository) UpdateBookStatus(ctx context.Context, bookID int64, status data.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == bookID {
			m.rows[i].Status = status
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func (m *memoryRepository) DeleteBook(ctx context.Context, bookID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	for i := range m.rows {
		if m.rows[i].ID == bookID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func run(t *testing.T, repo *memoryRepository, opts Options, input string) string {
	t.Helper()
	svc := service.New(config.Config{}, nil, jsonlog.New(io.Discard, jsonlog.LevelOff), repo)
	svc.Wait()
	t.Cleanup(svc.Close)
	var out bytes.Buffer
	if err := New(svc, strings.NewReader(input), &out, opts).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func seeded() *memoryRepository {
	return &memoryRepository{nextID: 7, rows: []data.Book{
		{ID: 7, Title: "Dune", Author: "Frank Herbert", Status: data.StatusAvailable},
		{ID: 3, Title: "1984", Author: "George Orwell", Status: data.StatusBorrowed},
	}}
}

func TestListAndSearch(t *testing.T) {
	out := run(t, seeded(), Options{}, "list\nsearch dune\n")
	if strings.Count(out, "Dune") != 2 || strings.Count(out, "1984") != 1 {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, `Books matching "dune"`) {
		t.Errorf("expected the search heading:\n%s", out)
	}
}

func TestAdd(t *testing.T) {
	repo := &memoryRepository{}
	out := run(t, repo, Options{Interactive: true}, "add\nDune\nHerbert\n\nlist\n")
	if !strings.Contains(out, `Added "Dune" by Herbert.`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if len(repo.rows) != 1 || repo.rows[0].Isbn != "" {
		t.Errorf("unexpected rows %+v", repo.rows)
	}
}

func TestAddMissingAuthor(t *testing.T) {
	repo := &memoryRepository{}
	out := run(t, repo, Options{Interactive: true}, "add\nDune\n\n\n")
	if !strings.Contains(out, "Error: failed validation") {
		t.Errorf("expected a validation error:\n%s", out)
	}
	if len(repo.rows) != 0 {
		t.Error("expected nothing inserted")
	}
}

func TestToggle(t *testing.T) {
	repo := seeded()
	out := run(t, repo, Options{}, "toggle 7\ntoggle 42\ntoggle x\n")
	if !strings.Contains(out, `"Dune" is now borrowed.`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Book 42 is not in the current view.") || !strings.Contains(out, "Invalid book ID: x") {
		t.Errorf("expected errors for bad ids:\n%s", out)
	}
	if repo.rows[0].Status != data.StatusBorrowed {
		t.Errorf("expected remote status borrowed; got %s", repo.rows[0].Status)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		input   string
		deleted bool
	}{
		{"declined", Options{Interactive: true}, "rm 7\nn\n", false},
		{"empty answer", Options{Interactive: true}, "rm 7\n\n", false},
		{"confirmed", Options{Interactive: true}, "rm 7\ny\n", true},
		{"not a terminal", Options{}, "rm 7\ny\n", false},
		{"assume yes", Options{AssumeYes: true}, "rm 7\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seeded()
			out := run(t, repo, tt.opts, tt.input)
			if !strings.Contains(out, `Delete "Dune" by Frank Herbert?`) {
				t.Errorf("expected the prompt to name the book:\n%s", out)
			}
			if tt.deleted {
				if repo.deletes != 1 || len(repo.rows) != 1 {
					t.Errorf("expected one deletion; got %d", repo.deletes)
				}
				return
			}
			if repo.deletes != 0 {
				t.Errorf("expected no delete request; got %d", repo.deletes)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	out := run(t, seeded(), Options{}, "borrow 7\nhelp\nexit\nlist\n")
	if !strings.Contains(out, `Unknown command "borrow"`) || !strings.Contains(out, "Available commands") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Dune") {
		t.Error("expected exit to stop the shell")
	}
}
