// Package transport provides the HTTP client used to talk to remote
// services, with retries on rate limiting and server errors.
package transport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// DefaultUserAgent identifies treesync to remote services.
const DefaultUserAgent = constants.Generator + " (https://github.com/osmhh/treesync)"

// Client performs HTTP requests for one service.
type Client struct {
	service   string
	http      *http.Client
	userAgent string
	attempts  int
	backoff   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetries sets how often a request is attempted in total.
func WithRetries(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithBackoff sets the base wait between attempts. The n-th retry waits
// n times the base unless the server sends Retry-After.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:   service,
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		userAgent: DefaultUserAgent,
		attempts:  constants.MaxRetries,
		backoff:   constants.RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestFunc builds a fresh request for every attempt.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Do sends the request built by newReq and returns a response with status
// 200. Rate limiting, server errors and network failures are retried; other
// statuses fail immediately with an APIError. The caller closes the body.
func (c *Client) Do(ctx context.Context, newReq RequestFunc) (*http.Response, error) {
	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		req, err := newReq(ctx)
		if err != nil {
			return nil, errors.WrapResource("create", "request", c.service, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		var wait time.Duration
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &errors.APIError{Service: c.service, Endpoint: req.URL.String(), Message: err.Error(), Err: err}
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		default:
			apiErr := ResponseError(c.service, resp)
			if !apiErr.Retryable() {
				return nil, apiErr
			}
			lastErr = apiErr
			wait = retryAfter(resp)
		}

		if attempt == c.attempts {
			break
		}
		if wait == 0 {
			wait = c.backoff * time.Duration(attempt)
		}
		logger.Warn().
			Err(lastErr).
			Str("service", c.service).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Request failed, retrying")

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryAfter(resp *http.Response) time.Duration {
	s, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || s <= 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
