// Package sdk provides a typed HTTP client for the klinik-store service.
package sdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"

	"github.com/klinik-dev/klinik-store/internal/store"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the daemon at baseURL, e.g. "http://localhost:5050".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// WithHTTPClient swaps the underlying http.Client, mainly for tests and
// callers that need custom timeouts.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) req() *requests.Builder {
	b := requests.URL(c.baseURL)
	if c.httpClient != nil {
		b = b.Client(c.httpClient)
	}
	return b
}

// wrapErr maps HTTP statuses onto the store's error kinds so callers can
// errors.Is against them without caring about transport.
func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if requests.HasStatusErr(err, http.StatusNotFound) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ListResult is one page of records plus the total match count before
// pagination.
type ListResult struct {
	Total int            `json:"total"`
	Items []store.Record `json:"items"`
}

// List fetches one page of a collection.
func (c *Client) List(ctx context.Context, collection string, opts store.ListOptions) (*ListResult, error) {
	dir := "asc"
	if opts.Descending {
		dir = "desc"
	}
	b := c.req().Pathf("/api/%s", collection)
	if opts.Query != "" {
		b = b.Param("q", opts.Query)
	}
	if opts.SortKey != "" {
		b = b.Param("sort", opts.SortKey).Param("dir", dir)
	}
	if opts.Offset > 0 {
		b = b.Param("offset", fmt.Sprint(opts.Offset))
	}
	if opts.Limit > 0 {
		b = b.Param("limit", fmt.Sprint(opts.Limit))
	}
	var out ListResult
	if err := b.ToJSON(&out).Fetch(ctx); err != nil {
		return nil, wrapErr(err, "list")
	}
	return &out, nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, collection, id string) (store.Record, error) {
	var out store.Record
	err := c.req().Pathf("/api/%s/%s", collection, id).ToJSON(&out).Fetch(ctx)
	if err != nil {
		return nil, wrapErr(err, "get")
	}
	return out, nil
}

// Create stores a new record and returns it with id and createdAt filled.
func (c *Client) Create(ctx context.Context, collection string, payload store.Record) (store.Record, error) {
	var out store.Record
	err := c.req().Pathf("/api/%s", collection).BodyJSON(payload).ToJSON(&out).Fetch(ctx)
	if err != nil {
		return nil, wrapErr(err, "create")
	}
	return out, nil
}

// Update shallow-merges patch onto the record and returns the result.
func (c *Client) Update(ctx context.Context, collection, id string, patch store.Record) (store.Record, error) {
	var out store.Record
	err := c.req().Pathf("/api/%s/%s", collection, id).Method(http.MethodPut).BodyJSON(patch).ToJSON(&out).Fetch(ctx)
	if err != nil {
		return nil, wrapErr(err, "update")
	}
	return out, nil
}

// Delete removes a record and returns the removed row.
func (c *Client) Delete(ctx context.Context, collection, id string) (store.Record, error) {
	var out struct {
		OK      bool         `json:"ok"`
		Removed store.Record `json:"removed"`
	}
	err := c.req().Pathf("/api/%s/%s", collection, id).Method(http.MethodDelete).ToJSON(&out).Fetch(ctx)
	if err != nil {
		return nil, wrapErr(err, "delete")
	}
	return out.Removed, nil
}

// BulkImport appends a batch of records and returns how many were stored.
func (c *Client) BulkImport(ctx context.Context, collection string, rows []store.Record) (int, error) {
	var out struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	err := c.req().Pathf("/api/%s/import", collection).BodyJSON(rows).ToJSON(&out).Fetch(ctx)
	if err != nil {
		return 0, wrapErr(err, "bulk import")
	}
	return out.Count, nil
}

// ExportAll downloads a snapshot of every collection.
func (c *Client) ExportAll(ctx context.Context) (map[string][]store.Record, error) {
	var out map[string][]store.Record
	err := c.req().Path("/api/export/all").ToJSON(&out).Fetch(ctx)
	if err != nil {
		return nil, wrapErr(err, "export all")
	}
	return out, nil
}

// ImportAll uploads a snapshot, replacing every collection it names.
func (c *Client) ImportAll(ctx context.Context, snapshot map[string][]store.Record) error {
	err := c.req().Path("/api/import/all").BodyJSON(snapshot).Fetch(ctx)
	return wrapErr(err, "import all")
}

// Health pings the daemon.
func (c *Client) Health(ctx context.Context) error {
	return wrapErr(c.req().Path("/health").Fetch(ctx), "health")
}
