// Package http wraps the standard client with the rate limiting and bounded
// retry policy shared by every upstream request.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting and retries. One
// Client (and so one limiter) is shared by every request the pipeline makes,
// keeping the whole run under the provider's per-minute budget no matter how
// many fetches are in flight.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	maxElapsed   time.Duration
	retryInitial time.Duration
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerMin  int
	MaxRetryElapsed time.Duration

	// RetryInitialInterval overrides the first backoff delay; zero keeps
	// the backoff default.
	RetryInitialInterval time.Duration
}

// NewClient creates a new HTTP client with rate limiting.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerMin == 0 {
		opts.RequestsPerMin = 55
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = 2 * time.Minute
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMin)), 1),
		maxElapsed:   opts.MaxRetryElapsed,
		retryInitial: opts.RetryInitialInterval,
	}
}

// DoRequest performs an HTTP request with rate limiting and bounded
// exponential-backoff retries. Transport errors and non-2xx statuses are
// retried until MaxRetryElapsed, then the last error is returned.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	operation := func() error {
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		resp, err = c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed
	if c.retryInitial > 0 {
		strategy.InitialInterval = c.retryInitial
	}

	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// HTTPStatusError represents an error due to a non-2xx HTTP status code.
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
