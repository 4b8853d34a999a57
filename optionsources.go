package client

import (
	"context"

	"github.com/stockroom/stockroom-client/internal/api"
	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/shardqueue"
)

// FetchOptions loads the raw option list behind endpoint, e.g.
// "options/units". It lets a Client back a remote OptionSource.
func (c *Client) FetchOptions(ctx context.Context, endpoint string, query map[string]string) Result[[]RawOption] {
	return api.FetchOptions(c.bind(ctx), c.caller, endpoint, query)
}

// RemoteOptions returns an option source loading from endpoint through c.
// Nothing is fetched until Refresh, SetQuery or Prefetch.
func RemoteOptions[T any](c *Client, endpoint string, query map[string]string) *OptionSource[T] {
	return optionsrc.Remote[T](c, endpoint, query, c.log.With().Str("endpoint", endpoint).Logger())
}

// Prefetchable is anything Prefetch can warm; *OptionSource satisfies it.
type Prefetchable interface {
	Endpoint() string
	Refresh(ctx context.Context) error
}

// Prefetch refreshes sources in the background. Refreshes of the same
// endpoint run in submission order. Failures are logged; the sources keep
// their previous options.
func (c *Client) Prefetch(ctx context.Context, sources ...Prefetchable) error {
	if c.closed.Load() {
		return ErrClosed
	}
	for _, src := range sources {
		src := src
		err := c.exec.Submit(ctx, src.Endpoint(), shardqueue.JobFunc(func(ctx context.Context) error {
			return src.Refresh(ctx)
		}))
		if err != nil {
			prefetchFailedTotal.WithLabelValues("enqueue").Inc()
			return err
		}
		prefetchEnqueuedTotal.Inc()
	}
	return nil
}

// AwaitPrefetch blocks until every refresh already queued for endpoint has
// run.
func (c *Client) AwaitPrefetch(ctx context.Context, endpoint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.exec.Barrier(ctx, endpoint)
}

func (c *Client) prefetchFailed(endpoint string, err error) {
	prefetchFailedTotal.WithLabelValues("run").Inc()
	c.log.Warn().Str("endpoint", endpoint).Err(err).Msg("prefetch failed")
}
