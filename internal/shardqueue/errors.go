package shardqueue

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports back-pressure: the shard stayed full for the whole
// enqueue timeout.
var ErrQueueFull = errors.New("prefetch queue full")

// ErrExecutorClosed is returned by Submit once Stop has been called.
var ErrExecutorClosed = errors.New("prefetch executor closed")

// QueueFullError carries diagnostics and matches ErrQueueFull.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("prefetch shard %d full (len=%d cap=%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
