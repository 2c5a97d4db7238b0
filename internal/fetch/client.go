// Package fetch retrieves raw track tables from the remote exporter service.
//
// The service accepts a JSON body {"artistUrl": "..."} and answers with
// {"artist": "...", "content": "..."}, where content is comma-delimited text
// whose first line is the header. This package only transports that text;
// parsing belongs to the table package.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyIdentifier is returned before any I/O when no identifier is given.
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrUpstream is returned for non-2xx answers and undecodable bodies.
	ErrUpstream = errors.New("upstream error")

	// ErrResponseTooLarge is returned when the body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("upstream response too large")
)

// Default client settings.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Result is one successful fetch: the source label used as the default export
// name and the raw table text.
type Result struct {
	Identifier string
	Label      string
	Content    string
}

type request struct {
	ArtistURL string `json:"artistUrl"`
}

type response struct {
	Artist  string `json:"artist"`
	Content string `json:"content"`
}

// Client posts identifiers to the remote endpoint.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxBodySize caps the number of response bytes read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// NewClient returns a Client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch sends identifier to the endpoint and returns the raw table text.
func (c *Client) Fetch(ctx context.Context, identifier string) (Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Result{}, ErrEmptyIdentifier
	}

	body, err := json.Marshal(request{ArtistURL: identifier})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", identifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(wrapBody(resp.Body, c.maxBodySize)).Decode(&decoded); err != nil {
		if errors.Is(err, ErrResponseTooLarge) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: decode body: %v", ErrUpstream, err)
	}

	return Result{
		Identifier: identifier,
		Label:      strings.TrimSpace(decoded.Artist),
		Content:    decoded.Content,
	}, nil
}
