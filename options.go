package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
)

// Option configures a Client during construction in New.
//
// Options run in order after the configuration has been resolved. The debug
// transport, when requested, is installed after every option has run so it
// wraps whichever HTTP client was finally chosen.
type Option func(*Client) error

// WithHTTPClient replaces the HTTP client. A shallow copy is kept so the
// caller's client is never mutated.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return cerrors.InvalidArgument("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse bound on a single HTTP exchange. A polled job issues several
// exchanges and is bounded by the poll policy instead.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return cerrors.InvalidArgument("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging dumps each request and response through the client
// logger when enabled is true.
//
// Do not enable this option in production environments: dumps include
// signature headers and bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}

// WithLogger sets the logger used for request, poll and queue events. The
// default is a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithPollPolicy overrides the poll policy from the configuration. The
// policy must be bounded by MaxAttempts or Timeout.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *Client) error {
		if err := p.Validate(); err != nil {
			return cerrors.InvalidArgument("poll policy: %v", err)
		}
		c.policy = p
		return nil
	}
}

// WithClock sets the time source used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return cerrors.InvalidArgument("clock must not be nil")
		}
		c.now = now
		return nil
	}
}

// WithQueue sizes the request queue used by Enqueue.
func WithQueue(shards, size int) Option {
	return func(c *Client) error {
		if shards <= 0 || size <= 0 {
			return fmt.Errorf("queue shards and size must be > 0, got %d/%d", shards, size)
		}
		c.queueCfg.Shards = shards
		c.queueCfg.QueueSize = size
		return nil
	}
}
