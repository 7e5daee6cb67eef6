// Package fetch provides the bounded HTTP GET client used by discovery and
// document retrieval. Every request carries a fixed user agent and a hard
// timeout; response bodies are capped so a single slow or huge page cannot
// stall an assessment run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theopenlane/httpsling"
)

const (
	// defaultTimeout bounds a single content fetch
	defaultTimeout = 30 * time.Second
	// defaultMaxBodySize caps the response bytes read per request (2MB
	// accommodates attestation report PDFs without letting a misbehaving
	// endpoint exhaust memory)
	defaultMaxBodySize = 2 * 1024 * 1024
	// defaultUserAgent identifies probity to vendor sites
	defaultUserAgent = "Mozilla/5.0 (compatible; Probity/1.0)"
)

// Getter fetches a single URL. Implementations must be safe for concurrent
// use; tests substitute a canned-response fake.
type Getter interface {
	// Get performs an HTTP GET against rawURL and returns the response.
	// Transport-level failures return an error; HTTP-level failures (4xx,
	// 5xx) return a Result with the status code set.
	Get(ctx context.Context, rawURL string) (*Result, error)
}

// Result holds a fetched response
type Result struct {
	// URL is the requested URL
	URL string
	// StatusCode is the HTTP response status
	StatusCode int
	// Header holds the response headers
	Header http.Header
	// Body holds the response bytes, capped at the client's max body size
	Body []byte
}

// OK reports whether the response carried a 2xx status
func (r *Result) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// ContentType returns the media type portion of the Content-Type header
func (r *Result) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}

	return strings.ToLower(strings.TrimSpace(ct))
}

// Client is the production Getter backed by net/http
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent overrides the default user agent
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the response bytes read per request
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// New creates a fetch client with the given options
func New(opts ...Option) *Client {
	client := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Get fetches rawURL and returns the capped response body
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	requester := httpsling.MustNew(
		httpsling.URL(rawURL),
		httpsling.Get(),
		httpsling.Header(httpsling.HeaderUserAgent, c.userAgent),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyReadFailed, err)
	}

	return &Result{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
