// Package fetch provides the HTTP page transport used to talk to the portal.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the default per-page request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PortalPlanner/1.0)"

// acceptEncoding is advertised on every request. Setting it by hand turns off the
// transport's transparent gzip handling, so decodeBody covers both encodings.
const acceptEncoding = "br, gzip"

// Result holds the raw content of one page fetch.
type Result struct {
	URL         string
	FinalURL    string // after redirects
	HTML        string
	ContentType string
	StatusCode  int
}

// Getter fetches a page by absolute URL.
type Getter interface {
	Get(ctx context.Context, urlStr string) (*Result, error)
}

// Error represents a transport failure: an unreachable host, a timeout, an
// undecodable body or a non-200 status.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the fetch failed because its deadline passed.
func (e *Error) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Logger    *zap.Logger
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client fetches pages over plain HTTP, sharing one cookie jar across requests.
type Client struct {
	http   *http.Client
	opts   Options
	logger *zap.Logger
}

// NewClient creates a client. A nil jar disables cookies and nil opts means
// DefaultOptions.
func NewClient(jar http.CookieJar, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   &http.Client{Jar: jar},
		opts:   o,
		logger: logger,
	}
}

// Get retrieves a page.
func (c *Client) Get(ctx context.Context, urlStr string) (*Result, error) {
	return c.do(ctx, http.MethodGet, urlStr, nil)
}

// PostForm submits an url-encoded form and follows any redirect.
func (c *Client) PostForm(ctx context.Context, urlStr string, form url.Values) (*Result, error) {
	return c.do(ctx, http.MethodPost, urlStr, form)
}

func (c *Client) do(ctx context.Context, method, urlStr string, form url.Values) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: "failed to decode response body", Cause: err}
	}
	bodyBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	c.logger.Debug("fetched page",
		zap.String("method", method),
		zap.String("url", urlStr),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(bodyBytes)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}
