package bsmi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Default client settings.
const (
	// DefaultUserAgent identifies bsmiweb in requests to BSMI endpoints.
	DefaultUserAgent = "bsmiweb/1.0"

	// DefaultTimeout bounds each request. BSMI endpoints are slow but a
	// response beyond this is treated as a transport failure.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBodySize limits the response body size to read. The
	// open-data authorization feed is tens of megabytes; 128MB leaves
	// generous headroom while still bounding memory.
	DefaultMaxBodySize = 128 * 1024 * 1024
)

// Client is an HTTP client for BSMI endpoints. It sets the bsmiweb
// User-Agent, bounds response sizes, and decodes response bodies to UTF-8
// based on the Content-Type charset.
//
// Design decision: We wrap *http.Client rather than exposing it because:
//  1. Every caller needs the same User-Agent and body handling
//  2. The charset decoding must happen before any pattern matching
//  3. Tests can point the client at an httptest server via the endpoint
//     arguments without touching transport internals
type Client struct {
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits how many bytes of a response body are read.
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithInsecureTLS disables server certificate verification.
//
// This exists for exactly one integration point: the BSMI open-data
// download endpoint serves a certificate chain that does not validate
// against public roots. The relaxation is intentional and scoped to the
// client instance built for that endpoint; the registration lookup client
// keeps full verification.
func WithInsecureTLS() ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // known non-standard government certificate, see doc comment
		}
	}
}

// NewClient creates a Client with default settings.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches rawURL and returns the response body decoded to UTF-8.
// A non-success status yields a *FetchError.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

// PostForm submits a form-encoded POST to rawURL and returns the response
// body decoded to UTF-8. A non-success status yields a *FetchError.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// do executes the request and reads the decoded body.
func (c *Client) do(req *http.Request) (string, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &FetchError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := decodeBody(io.LimitReader(resp.Body, c.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// decodeBody reads r and converts it to UTF-8 according to the charset
// parameter of the Content-Type header. A missing, unknown, or UTF-8
// charset reads the body as-is; legacy encodings such as Big5 are decoded
// via the golang.org/x/text encoding index.
func decodeBody(r io.Reader, contentType string) (string, error) {
	charset := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			charset = strings.ToLower(params["charset"])
		}
	}

	if charset != "" && charset != "utf-8" && charset != "utf8" {
		if enc, err := htmlindex.Get(charset); err == nil {
			r = transform.NewReader(r, enc.NewDecoder())
		}
		// An unknown charset falls through to a raw read; pattern
		// matching on ASCII markup still works and the alternative
		// is failing the whole fetch.
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
