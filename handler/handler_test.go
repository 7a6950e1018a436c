package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
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
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

type memoryRepository struct {
	mu        sync.Mutex
	rows      []data.Book
	nextID    int64
	deletes   int
	insertErr error
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
	if m.insertErr != nil {
		return m.insertErr
	}
	m.nextID++
	book := data.Book{ID: m.nextID, CreatedAt: time.Now(), Title: row.Title, Author: row.Author, Isbn: row.Isbn, CoverURL: row.CoverURL, Status: data.StatusAvailable}
	m.rows = append([]data.Book{book}, m.rows...)
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

func newTestHandler(t *testing.T, cfg config.Config, repo *memoryRepository) (*Handler, http.Handler) {
	t.Helper()
	cfg.Catalog.DefaultCoverURL = config.DefaultCoverURL
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	svc := service.New(cfg, nil, logger, repo)
	svc.Wait()
	t.Cleanup(svc.Close)
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](3 * time.Minute))
	h := New(cfg, logger, limiters, svc)
	return h, h.Routes()
}

func do(t *testing.T, routes http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	var env map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, target, err)
	}
	return rr, env
}

func decodeCatalog(t *testing.T, env map[string]json.RawMessage) service.State {
	t.Helper()
	var state service.State
	if err := json.Unmarshal(env["catalog"], &state); err != nil {
		t.Fatal(err)
	}
	return state
}

func TestHealthcheck(t *testing.T) {
	var cfg config.Config
	cfg.Server.Env = "testing"
	_, routes := newTestHandler(t, cfg, &memoryRepository{})
	rr, env := do(t, routes, http.MethodGet, "/v1/healthcheck", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d", rr.Code)
	}
	if string(env["status"]) != `"available"` {
		t.Errorf("unexpected status %s", env["status"])
	}
}

func TestCreateBook(t *testing.T) {
	t.Run("from body", func(t *testing.T) {
		repo := &memoryRepository{}
		_, routes := newTestHandler(t, config.Config{}, repo)
		rr, env := do(t, routes, http.MethodPost, "/v1/books", `{"title":"Dune","author":"Herbert"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201; got %d: %s", rr.Code, rr.Body)
		}
		state := decodeCatalog(t, env)
		if len(state.Books) != 1 || state.Books[0].Title != "Dune" || state.Books[0].Status != data.StatusAvailable {
			t.Errorf("unexpected books %+v", state.Books)
		}
		if state.Books[0].CoverURL != config.DefaultCoverURL {
			t.Errorf("expected default cover; got %q", state.Books[0].CoverURL)
		}
	})

	t.Run("from stored draft", func(t *testing.T) {
		repo := &memoryRepository{}
		_, routes := newTestHandler(t, config.Config{}, repo)
		rr, _ := do(t, routes, http.MethodPut, "/v1/catalog/draft", `{"title":"1984","author":"Orwell"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200; got %d", rr.Code)
		}
		rr, env := do(t, routes, http.MethodPost, "/v1/books", "")
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201; got %d: %s", rr.Code, rr.Body)
		}
		state := decodeCatalog(t, env)
		if !state.Draft.IsZero() {
			t.Errorf("expected draft cleared; got %+v", state.Draft)
		}
	})

	t.Run("missing author", func(t *testing.T) {
		repo := &memoryRepository{}
		_, routes := newTestHandler(t, config.Config{}, repo)
		rr, _ := do(t, routes, http.MethodPost, "/v1/books", `{"title":"Dune"}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422; got %d", rr.Code)
		}
		if len(repo.rows) != 0 {
			t.Error("expected nothing inserted")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, routes := newTestHandler(t, config.Config{}, &memoryRepository{})
		rr, _ := do(t, routes, http.MethodPost, "/v1/books", `{"title":"Dune","year":1965}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400; got %d", rr.Code)
		}
	})

	t.Run("remote failure", func(t *testing.T) {
		repo := &memoryRepository{insertErr: errors.New("new row violates row-level security policy")}
		_, routes := newTestHandler(t, config.Config{}, repo)
		rr, env := do(t, routes, http.MethodPost, "/v1/books", `{"title":"Dune","author":"Herbert"}`)
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("expected 502; got %d", rr.Code)
		}
		if !strings.Contains(string(env["error"]), "row-level security") {
			t.Errorf("expected the remote message; got %s", env["error"])
		}
		_, env = do(t, routes, http.MethodGet, "/v1/catalog", "")
		state := decodeCatalog(t, env)
		if state.Alert == "" || state.Draft.Title != "Dune" {
			t.Errorf("expected alert and kept draft; got %+v", state)
		}
	})
}

func TestToggleBookStatus(t *testing.T) {
	repo := &memoryRepository{rows: []data.Book{{ID: 7, Title: "Dune", Author: "Herbert", Status: data.StatusAvailable}}, nextID: 7}
	_, routes := newTestHandler(t, config.Config{}, repo)

	rr, env := do(t, routes, http.MethodPatch, "/v1/books/7/status", `{"status":"available"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d: %s", rr.Code, rr.Body)
	}
	if got := decodeCatalog(t, env).Books[0].Status; got != data.StatusBorrowed {
		t.Errorf("expected borrowed; got %s", got)
	}

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"unknown id", "/v1/books/99/status", `{"status":"available"}`, http.StatusNotFound},
		{"bad id", "/v1/books/abc/status", `{"status":"available"}`, http.StatusNotFound},
		{"bad status", "/v1/books/7/status", `{"status":"lost"}`, http.StatusUnprocessableEntity},
		{"empty body", "/v1/books/7/status", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := do(t, routes, http.MethodPatch, tt.target, tt.body)
			if rr.Code != tt.want {
				t.Errorf("expected %d; got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestDeleteBook(t *testing.T) {
	repo := &memoryRepository{rows: []data.Book{{ID: 7, Title: "Dune", Author: "Herbert", Status: data.StatusAvailable}}, nextID: 7}
	_, routes := newTestHandler(t, config.Config{}, repo)

	rr, env := do(t, routes, http.MethodDelete, "/v1/books/7", "")
	if rr.Code != http.StatusOK || string(env["deleted"]) != "false" {
		t.Fatalf("expected declined deletion; got %d %s", rr.Code, rr.Body)
	}
	if repo.deletes != 0 {
		t.Fatalf("expected no delete request; got %d", repo.deletes)
	}

	rr, env = do(t, routes, http.MethodDelete, "/v1/books/7?confirm=true", "")
	if rr.Code != http.StatusOK || string(env["deleted"]) != "true" {
		t.Fatalf("expected deletion; got %d %s", rr.Code, rr.Body)
	}
	_, env = do(t, routes, http.MethodGet, "/v1/books", "")
	if string(env["books"]) != "[]" {
		t.Errorf("expected empty list; got %s", env["books"])
	}
}

func TestCatalogState(t *testing.T) {
	repo := &memoryRepository{rows: []data.Book{
		{ID: 2, Title: "Dune", Author: "Frank Herbert", Status: data.StatusAvailable},
		{ID: 1, Title: "1984", Author: "George Orwell", Status: data.StatusBorrowed},
	}, nextID: 2}
	_, routes := newTestHandler(t, config.Config{}, repo)

	_, env := do(t, routes, http.MethodPut, "/v1/catalog/search", `{"term":"DUNE"}`)
	state := decodeCatalog(t, env)
	if len(state.Books) != 1 || state.Total != 2 || state.SearchTerm != "DUNE" {
		t.Errorf("unexpected filtered state %+v", state)
	}

	_, env = do(t, routes, http.MethodPost, "/v1/catalog/form", "")
	if !decodeCatalog(t, env).CreateFormOpen {
		t.Error("expected form open")
	}
	_, env = do(t, routes, http.MethodDelete, "/v1/catalog/form", "")
	if decodeCatalog(t, env).CreateFormOpen {
		t.Error("expected form closed")
	}

	rr, _ := do(t, routes, http.MethodPost, "/v1/catalog/refresh", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200; got %d", rr.Code)
	}
	rr, _ = do(t, routes, http.MethodDelete, "/v1/catalog/alert", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200; got %d", rr.Code)
	}
}

func TestRoutingErrors(t *testing.T) {
	_, routes := newTestHandler(t, config.Config{}, &memoryRepository{})
	rr, _ := do(t, routes, http.MethodGet, "/v1/unknown", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404; got %d", rr.Code)
	}
	rr, _ = do(t, routes, http.MethodPut, "/v1/books", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405; got %d", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	var cfg config.Config
	cfg.Limiter.Enabled = true
	cfg.Limiter.RPS = 1
	cfg.Limiter.Burst = 2
	_, routes := newTestHandler(t, cfg, &memoryRepository{})
	codes := make([]int, 3)
	for i := range codes {
		rr, _ := do(t, routes, http.MethodGet, "/v1/healthcheck", "")
		codes[i] = rr.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
}

func TestEnableCORS(t *testing.T) {
	var cfg config.Config
	cfg.Cors.TrustedOrigins = []string{"https://library.example"}
	_, routes := newTestHandler(t, cfg, &memoryRepository{})
	req := httptest.NewRequest(http.MethodOptions, "/v1/books", nil)
	req.Header.Set("Origin", "https://library.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight; got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://library.example" {
		t.Errorf("unexpected allow origin %q", got)
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	var cfg config.Config
	cfg.BasicAuth.Username = "admin"
	cfg.BasicAuth.PasswordHash = string(hash)
	h, _ := newTestHandler(t, cfg, &memoryRepository{})
	protected := h.basicAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"valid", "admin", "s3cret", http.StatusNoContent},
		{"wrong password", "admin", "guess", http.StatusUnauthorized},
		{"wrong user", "root", "s3cret", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
			req.SetBasicAuth(tt.username, tt.password)
			rr := httptest.NewRecorder()
			protected(rr, req)
			if rr.Code != tt.want {
				t.Errorf("expected %d; got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestSwaggerSpec(t *testing.T) {
	_, routes := newTestHandler(t, config.Config{}, &memoryRepository{})
	rr, env := do(t, routes, http.MethodGet, "/spec", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d", rr.Code)
	}
	if string(env["basePath"]) != `"/v1"` {
		t.Errorf("unexpected basePath %s", env["basePath"])
	}
}

func TestRecoverPanic(t *testing.T) {
	h, _ := newTestHandler(t, config.Config{}, &memoryRepository{})
	routes := h.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr, _ := do(t, routes, http.MethodGet, "/", "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500; got %d", rr.Code)
	}
	if rr.Header().Get("Connection") != "close" {
		t.Error("expected connection close header")
	}
}
