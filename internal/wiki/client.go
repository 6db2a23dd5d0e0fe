// Package wiki talks to a MediaWiki-style encyclopedia: the query API for
// thumbnails, extracts, media listings, image info and category members, and
// the page-render endpoint for raw article HTML.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/metrics"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
)

var (
	// ErrMissingPage is returned when the API reports the title does not exist.
	ErrMissingPage = errors.New("wiki: page missing")
	// ErrMalformed is returned when the API answers with something other than JSON.
	ErrMalformed = errors.New("wiki: malformed response")
)

// HTTPError represents a non-200 upstream response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Waiter throttles outbound requests per host.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Config controls the client.
type Config struct {
	APIURL     string
	PageURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	pages   quiz.Fetcher
	limiter Waiter
	cache   Cacher
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter throttles API calls.
func WithLimiter(w Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// WithCache memoizes API responses.
func WithCache(cache Cacher) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a Client. pages fetches rendered article HTML.
func New(cfg Config, pages quiz.Fetcher, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		pages:  pages,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Headers returns the identifying header set sent with every outbound call.
func (c *Client) Headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Api-User-Agent", c.cfg.UserAgent)
	h.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.5")
	return h
}

// query issues an action=query API call and returns the raw JSON body.
func (c *Client) query(ctx context.Context, call string, params url.Values) ([]byte, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	endpoint := c.cfg.APIURL + "?" + params.Encode()

	if c.cache == nil {
		return c.fetchWithRetry(ctx, call, endpoint)
	}
	body, err := c.cache.GetSet(ctx, URLToKey(endpoint), func(ctx context.Context) ([]byte, error) {
		return c.fetchWithRetry(ctx, call, endpoint)
	}, c.cache.TTL())
	if err != nil {
		return nil, fmt.Errorf("cached %s: %w", call, err)
	}
	return body, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, call, endpoint string) ([]byte, error) {
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.fetchOnce(ctx, call, endpoint)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxRetries+1)),
		retry.Delay(c.cfg.RetryDelay),
		retry.MaxJitter(c.cfg.RetryDelay/2),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying wiki request",
				zap.String("call", call),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call, err)
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, call, endpoint string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = c.Headers()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(call, 0)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body
	metrics.ObserveUpstream(call, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: endpoint}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: %w", call, ErrMalformed)
	}
	return body, nil
}

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrMalformed) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
