package client

import (
	"errors"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/loader"
	"github.com/stockroom/stockroom-client/internal/optionsrc"
	"github.com/stockroom/stockroom-client/internal/selection"
	"github.com/stockroom/stockroom-client/internal/shardqueue"
)

// ErrBackPressure is returned by Prefetch when a prefetch shard is full.
var ErrBackPressure = shardqueue.ErrQueueFull

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// ErrClosed is returned once the client or a loader has been closed.
var ErrClosed = loader.ErrClosed

// Re-exported so callers compare against a single symbol.
var (
	ErrFetchOptions = optionsrc.ErrFetchOptions
	ErrNotOpen      = selection.ErrNotOpen
	ErrDisabled     = selection.ErrDisabled
)

// Error codes carried in Error.ErrorCode.
const (
	CodeNetwork         = envelope.CodeNetwork
	CodeCancelled       = envelope.CodeCancelled
	CodeClient          = envelope.CodeClient
	CodeHTTP            = envelope.CodeHTTP
	CodeUnauthorized    = envelope.CodeUnauthorized
	CodeInvalidResponse = envelope.CodeInvalidResponse
	CodeApplication     = envelope.CodeApplication
)

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	var e *envelope.Error
	return errors.As(err, &e) && e.ErrorCode == envelope.CodeUnauthorized
}
