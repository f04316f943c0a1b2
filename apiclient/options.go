package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-menu-client/internal/metrics"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	defaultUserAgent      = "go-menu-client/1.0"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Its own Timeout should be left at zero, the client
// applies per request timeouts itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestTimeout bounds every round trip, zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithRefreshTimeout bounds the credential refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// WithRateLimit throttles outbound round trips to limit per second. limit <= 0 disables it.
func WithRateLimit(limit float64, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}
