// Package client is the Go SDK for the Stockroom business backend.
//
// A Client owns one authenticated session. Every call returns a Result
// rather than a bare error; a 401 from the backend ends the session and
// notifies the observers registered with OnLogout.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/stockroom-client/internal/config"
	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/session"
	"github.com/stockroom/stockroom-client/internal/shardqueue"
	"github.com/stockroom/stockroom-client/internal/types"
)

// Client talks to one backend on behalf of one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	now     func() time.Time

	store       session.Store
	storeCloser io.Closer
	sess        *session.Manager
	caller      *envelope.Caller

	exec        executor
	prefetchCfg shardqueue.Config

	inventory *optionsrc.Memo[int64, []types.InventoryItem]

	closed atomic.Bool
}

// New constructs a Client for baseURL. The session starts logged out; call
// Restore to pick up a persisted one.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("baseURL cannot be empty")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
		now:     time.Now,
	}

	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.store == nil {
		c.store = session.NewMemoryStore()
	}
	c.sess = session.NewManager(c.store,
		session.WithLogger(c.log.With().Str("component", "session").Logger()),
		session.WithClock(c.now),
	)

	c.wrapTransportWithSession()
	c.caller = envelope.NewCaller(c.http, c.baseURL,
		envelope.WithLogger(c.log.With().Str("component", "envelope").Logger()),
		envelope.WithUnauthorizedHook(func(ctx context.Context) {
			c.sess.Invalidate(ctx, "backend rejected the session token")
		}),
	)

	if c.exec == nil {
		cfg := c.prefetchCfg
		cfg.Logger = c.log
		cfg.ErrorHandler = c.prefetchFailed
		c.exec = shardqueue.New(cfg)
	}
	// cached rows belong to the session that loaded them
	c.inventory = optionsrc.NewMemo(c.loadInventory)
	c.sess.OnLogin(func(context.Context, session.Event) { c.inventory.Reset() })
	c.sess.OnLogout(func(context.Context, session.Event) { c.inventory.Reset() })
	return c, nil
}

// NewFromConfig builds a Client from environment-derived settings, with
// the session persisted in SQLite.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := session.OpenSQLite(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	base := []Option{
		WithHTTPTimeout(cfg.HTTPTimeout),
		WithDebugLogging(cfg.Debug),
		withOwnedStore(store),
		WithPrefetchConfig(shardqueue.Config{Shards: cfg.PrefetchShards, MaxAttempts: cfg.PrefetchMaxAttempts}),
	}
	c, err := New(cfg.BaseURL, append(base, opts...)...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) wrapTransportWithSession() {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.http.Transport = &sessionTransport{base: base, token: c.sess.Token}
}

// bind tags ctx with the current session so a 401 can be matched to it.
func (c *Client) bind(ctx context.Context) context.Context {
	if ctx == nil {
		return nil
	}
	return c.sess.Bind(ctx)
}

// Close stops background prefetching and releases the session store if
// the client opened it. Safe to call multiple times.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	if c.storeCloser != nil {
		return c.storeCloser.Close()
	}
	return nil
}
