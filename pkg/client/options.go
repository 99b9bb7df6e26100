package client

import (
	"net/http"
	"time"
)

// Option customises a Client at construction time.  Options are applied in
// the order given to NewClient, so later options win on conflict.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client, for callers that need
// their own transport, proxy, or timeout settings.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger routes the client's request and retry logging to logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryMax caps the number of retries after the initial attempt.  Zero
// disables retrying entirely; negative values are ignored.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax >= 0 {
			c.retryMax = retryMax
		}
	}
}

// WithRetryWait bounds the exponential backoff between retries.  min must be
// positive and max at least min; out-of-range values leave the defaults in
// place.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.retryWaitMin = min
			if max >= min {
				c.retryWaitMax = max
			}
		}
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
// An empty string keeps the default.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}
