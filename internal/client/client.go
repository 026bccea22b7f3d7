// Package client talks to the furigana HTTP API.
package client

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
	"time"

	"github.com/jusunglee/furigana/internal/furigana"
)

var ErrNotFound = errors.New("not found")

// APIError is returned for any non-2xx response. Kind and Offset are set when
// the server rejected malformed furigana; Offset indexes into Normalized when
// that is set and into the submitted text otherwise.
type APIError struct {
	Status     int    `json:"-"`
	Message    string `json:"error"`
	Kind       string `json:"kind"`
	Offset     int    `json:"offset"`
	Normalized string `json:"normalized"`
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("api: %d %s (%s at offset %d)", e.Status, e.Message, e.Kind, e.Offset)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	url      string
	http     *http.Client
	apiKey   string
	password string
}

type Option func(*Client)

// WithAPIKey sets the key sent with bulk imports.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithAdminPassword sets the basic auth password sent with deletes.
func WithAdminPassword(password string) Option {
	return func(c *Client) { c.password = password }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		url:  baseURL,
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type ParseResult struct {
	Raw      string            `json:"raw"`
	Kanji    string            `json:"kanji"`
	Kana     string            `json:"kana"`
	HasKanji bool              `json:"has_kanji"`
	Segments furigana.Sequence `json:"segments"`
}

type Document struct {
	ID           int64             `json:"id"`
	Raw          string            `json:"raw"`
	Kanji        string            `json:"kanji"`
	Kana         string            `json:"kana"`
	SegmentCount int32             `json:"segment_count"`
	HasKanji     bool              `json:"has_kanji"`
	Segments     furigana.Sequence `json:"segments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type DocumentPage struct {
	Data       []Document `json:"data"`
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
	} `json:"pagination"`
}

// BatchResult holds either the parse of one line or why it failed.
type BatchResult struct {
	Index int `json:"index"`
	*ParseResult
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}

type BatchResponse struct {
	Results []BatchResult `json:"results"`
	Summary struct {
		Total  int            `json:"total"`
		OK     int            `json:"ok"`
		Failed int            `json:"failed"`
		ByKind map[string]int `json:"by_kind"`
	} `json:"summary"`
}

type ImportResponse struct {
	Status    string `json:"status"`
	JobID     int64  `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

func (c *Client) Parse(ctx context.Context, raw string) (ParseResult, error) {
	var out ParseResult
	err := c.do(ctx, http.MethodPost, "/api/v1/furigana/parse", map[string]any{"raw": raw}, &out, nil)
	return out, err
}

// Format rewrites raw server side and returns the reformatted parse.
func (c *Client) Format(ctx context.Context, raw string, opts furigana.FormatOptions) (ParseResult, error) {
	body := map[string]any{"raw": raw, "fix": opts.Fix, "merge": opts.Merge, "lossy": opts.Lossy}
	var out ParseResult
	err := c.do(ctx, http.MethodPost, "/api/v1/furigana/format", body, &out, nil)
	return out, err
}

func (c *Client) Batch(ctx context.Context, lines []string) (BatchResponse, error) {
	var out BatchResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/furigana/batch", map[string]any{"lines": lines}, &out, nil)
	return out, err
}

func (c *Client) CreateDocument(ctx context.Context, raw string) (Document, error) {
	var out Document
	err := c.do(ctx, http.MethodPost, "/api/v1/documents", map[string]any{"raw": raw}, &out, nil)
	return out, err
}

func (c *Client) GetDocument(ctx context.Context, id int64) (Document, error) {
	var out Document
	err := c.do(ctx, http.MethodGet, "/api/v1/documents/"+strconv.FormatInt(id, 10), nil, &out, nil)
	return out, err
}

// ListDocuments returns one page of documents, filtered by q when set.
func (c *Client) ListDocuments(ctx context.Context, q string, page, limit int) (DocumentPage, error) {
	params := url.Values{}
	if q != "" {
		params.Set("q", q)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/documents"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out DocumentPage
	err := c.do(ctx, http.MethodGet, path, nil, &out, nil)
	return out, err
}

func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/documents/"+strconv.FormatInt(id, 10), nil, nil, func(req *http.Request) {
		req.SetBasicAuth("admin", c.password)
	})
}

func (c *Client) Import(ctx context.Context, lines []string) (ImportResponse, error) {
	var out ImportResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/documents/import", map[string]any{"lines": lines}, &out, func(req *http.Request) {
		req.Header.Set("X-API-Key", c.apiKey)
	})
	return out, err
}

// Healthy reports whether /health answered 200.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("checking health: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, edit func(*http.Request)) error {
	var r io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		r = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if edit != nil {
		edit(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
