package backend

import (
	"log/slog"
	"net/http"
	"time"
)

// Option customises a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetry overrides the retry budget and the backoff bounds. Zero waits
// keep the library defaults.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		if retryMax >= 0 {
			c.http.RetryMax = retryMax
		}
		if waitMin > 0 {
			c.http.RetryWaitMin = waitMin
		}
		if waitMax > 0 {
			c.http.RetryWaitMax = waitMax
		}
	}
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http.HTTPClient = client
		}
	}
}

// WithLogger routes client and retry logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow overrides the clock used to stamp receipts the backend left
// undated.
func WithNow(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
