// Package postgrest is a thin client for tables exposed over a PostgREST
// compatible HTTP interface, such as the one fronting a hosted Supabase project.
//
// It implements only what a catalog needs: list a whole table in a given order,
// insert a row, and update or delete rows selected by exact column equality.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned by every call when the client has no endpoint URL.
var ErrNotConfigured = errors.New("postgrest: remote endpoint is not configured")

// Match selects rows whose columns equal the given values exactly.
type Match map[string]string

// Error is a failure reported by the remote service.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return fmt.Sprintf("postgrest: %d %s", e.StatusCode, msg)
}

// Client sends requests to a PostgREST endpoint on behalf of one API key.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// New returns a client for the project at baseURL. A Supabase project URL
// is accepted as is; the /rest/v1 prefix is added when missing.
func New(baseURL, key string, httpClient *http.Client) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.HasSuffix(baseURL, "/rest/v1") {
		baseURL += "/rest/v1"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, key: key, http: httpClient}
}

// List fetches every row of table ordered by orderBy and decodes them into dst,
// which must be a pointer to a slice.
func (c *Client) List(ctx context.Context, table, orderBy string, ascending bool, dst any) error {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	query := url.Values{}
	query.Set("select", "*")
	if orderBy != "" {
		query.Set("order", orderBy+"."+direction)
	}
	resp, err := c.do(ctx, http.MethodGet, table, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(dst)
}

// Insert adds row to table. Columns absent from row take their table defaults.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	resp, err := c.do(ctx, http.MethodPost, table, nil, row, "return=minimal")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Update applies patch to the rows selected by match and returns how many
// rows were affected, or -1 when the server did not say.
func (c *Client) Update(ctx context.Context, table string, match Match, patch any) (int64, error) {
	if len(match) == 0 {
		return 0, errors.New("postgrest: refusing to update without a filter")
	}
	resp, err := c.do(ctx, http.MethodPatch, table, match.values(), patch, "return=minimal,count=exact")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return affectedRows(resp.Header.Get("Content-Range")), nil
}

// Delete removes the rows selected by match and returns how many rows were
// affected, or -1 when the server did not say.
func (c *Client) Delete(ctx context.Context, table string, match Match) (int64, error) {
	if len(match) == 0 {
		return 0, errors.New("postgrest: refusing to delete without a filter")
	}
	resp, err := c.do(ctx, http.MethodDelete, table, match.values(), nil, "return=minimal,count=exact")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return affectedRows(resp.Header.Get("Content-Range")), nil
}

func (m Match) values() url.Values {
	query := url.Values{}
	for column, value := range m {
		query.Set(column, "eq."+value)
	}
	return query
}

// do sends one request and converts non-2xx responses to *Error. On success
// the caller owns the response body.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	var payload io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(js)
	}
	endpoint := c.baseURL + "/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// affectedRows reads the total from a Content-Range header such as "0-0/1"
// or "*/0".
func affectedRows(contentRange string) int64 {
	i := strings.LastIndexByte(contentRange, '/')
	if i < 0 {
		return -1
	}
	n, err := strconv.ParseInt(contentRange[i+1:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
