package client

// Functional options applied by New before the session transport is
// installed, so transport options end up underneath it.

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/stockroom-client/internal/session"
	"github.com/stockroom/stockroom-client/internal/shardqueue"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout bounds each HTTP request. Prefer context deadlines for
// finer control. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. Its Transport is
// wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging dumps every request and response at debug level when
// enabled. Dumps include the bearer token; keep it out of production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport, log: &c.log}
			}
		}
		return nil
	}
}

// WithLogger sets the logger used by the client and its components.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithSessionStore persists the session in s. The caller keeps ownership.
func WithSessionStore(s session.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("session store cannot be nil")
		}
		c.store = s
		return nil
	}
}

func withOwnedStore(s interface {
	session.Store
	io.Closer
}) Option {
	return func(c *Client) error {
		c.store = s
		c.storeCloser = s
		return nil
	}
}

// WithPrefetchConfig tunes the background option prefetcher.
func WithPrefetchConfig(cfg shardqueue.Config) Option {
	return func(c *Client) error {
		c.prefetchCfg = cfg
		return nil
	}
}

// WithClock overrides time.Now for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		c.now = now
		return nil
	}
}
