package client

import (
	"context"

	"github.com/stockroom/stockroom-client/internal/shardqueue"
)

// executor runs prefetch jobs in the background.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Barrier(context.Context, string) error
	Stop()
}
