package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxResponseSize is the number of response body bytes read when decoding an
// envelope. Anything beyond it is discarded by truncation of the decode.
const MaxResponseSize = 1 << 20 // 1MB

// HTTPClient abstracts HTTP operations for testability. Use [http.Client]
// wrapped in [StandardClient] for production; [MockHTTPClient] for testing.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// StandardClient wraps [*http.Client] to implement [HTTPClient].
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a new StandardClient wrapping the given
// http.Client.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = http.DefaultClient
	}
	return &StandardClient{Client: c}
}

// Do sends an HTTP request.
func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

// Client issues HTTP requests and decodes their JSON responses into
// [ResponseJSON] envelopes. Each outbound request carries a fresh
// X-Request-ID header.
type Client struct {
	http HTTPClient
}

// NewClient creates a Client sending requests through h. A nil h falls back
// to [http.DefaultClient].
func NewClient(h HTTPClient) *Client {
	if h == nil {
		h = NewStandardClient(nil)
	}
	return &Client{http: h}
}

// Request sends a method request to url with the given body (which may be
// nil) and decodes the response into an envelope. Responses that are valid
// JSON but not envelope-shaped come back as OK envelopes carrying the decoded
// document as Data.
func (c *Client) Request(ctx context.Context, method, url string, body io.Reader) (*ResponseJSON, error) {
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, body)
	if err != nil {
		return nil, fmt.Errorf("rest: cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: request failed: %w", err)
	}
	defer resp.Body.Close()

	return FromReader(io.LimitReader(resp.Body, MaxResponseSize))
}

// Request sends a bodyless method request to url using the default HTTP
// client and decodes the response into an envelope.
func Request(ctx context.Context, method, url string) (*ResponseJSON, error) {
	return NewClient(nil).Request(ctx, method, url, nil)
}
