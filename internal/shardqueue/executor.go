// Package shardqueue runs background jobs on a fixed set of shard workers.
// Jobs submitted under the same key run one at a time in submission order;
// different keys may run in parallel.
//
// Submit must not be called concurrently for the same key if FIFO order
// matters to the caller.
package shardqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	clerrors "github.com/stockroom/stockroom-client/internal/errors"
)

type queuedJob struct {
	ctx context.Context
	key string
	job Job
}

// Executor dispatches jobs to shard workers chosen by a hash of the key.
type Executor struct {
	cfg    Config
	log    zerolog.Logger
	queues []chan queuedJob

	done   chan struct{}
	closed atomic.Bool

	wg sync.WaitGroup
}

// New starts cfg.Shards workers.
func New(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	e := &Executor{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("component", "prefetch").Logger(),
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := range e.queues {
		ch := make(chan queuedJob, cfg.QueueSize)
		e.queues[i] = ch
		e.wg.Add(1)
		go e.runWorker(i, ch)
	}
	return e
}

// Submit enqueues job on the shard for key. It returns ErrExecutorClosed
// after Stop, a *QueueFullError when the shard stays full past
// EnqueueTimeout, or ctx.Err() if ctx ends first.
func (e *Executor) Submit(ctx context.Context, key string, job Job) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	select {
	case <-e.done:
		return ErrExecutorClosed
	default:
	}

	shard := e.shardFor(key)
	ch := e.queues[shard]

	timer := time.NewTimer(e.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, key: key, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-e.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

// Barrier waits until every job submitted for key before the call has run.
func (e *Executor) Barrier(ctx context.Context, key string) error {
	reached := make(chan struct{})
	if err := e.Submit(ctx, key, JobFunc(func(context.Context) error {
		close(reached)
		return nil
	})); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-reached:
		return nil
	}
}

// Stop drains the queues and waits for the workers. It is idempotent.
func (e *Executor) Stop() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.log.Debug().Int("shards", e.cfg.Shards).Msg("stopping prefetch executor")
	close(e.done)
	e.wg.Wait()
	e.log.Debug().Msg("prefetch executor stopped")
}

// Close implements io.Closer.
func (e *Executor) Close() error {
	e.Stop()
	return nil
}

func (e *Executor) runWorker(idx int, ch <-chan queuedJob) {
	defer e.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			e.execute(label, qj)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))
		case <-e.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					if qj.job != nil && qj.ctx.Err() == nil {
						e.runOnce(label, qj)
						drained++
					}
				default:
					if drained > 0 {
						e.log.Debug().Int("shard", idx).Int("jobs", drained).Msg("drained prefetch shard")
					}
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

func (e *Executor) execute(label string, qj queuedJob) {
	if qj.job == nil {
		return
	}
	if err := qj.ctx.Err(); err != nil {
		e.handleError(qj.key, err)
		return
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = e.cfg.BaseBackoff
	exp.MaxInterval = e.cfg.MaxInterval
	exp.Multiplier = 2
	exp.Reset()

	for attempt := 1; ; attempt++ {
		err := e.runOnce(label, qj)
		if err == nil {
			return
		}
		if attempt >= e.cfg.MaxAttempts || !clerrors.IsRecoverable(err) {
			e.handleError(qj.key, err)
			return
		}
		retriesTotal.WithLabelValues(label).Inc()
		wait := exp.NextBackOff()
		e.log.Debug().Str("key", qj.key).Int("attempt", attempt).Dur("wait", wait).Err(err).Msg("retrying prefetch job")
		select {
		case <-time.After(wait):
		case <-e.done:
			e.handleError(qj.key, err)
			return
		case <-qj.ctx.Done():
			e.handleError(qj.key, qj.ctx.Err())
			return
		}
	}
}

// runOnce shields the worker from a panicking job.
func (e *Executor) runOnce(label string, qj queuedJob) (err error) {
	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			e.log.Error().Str("key", qj.key).Interface("panic", r).Msg("prefetch job panicked")
			err = nil
		}
	}()
	return qj.job.Run(qj.ctx)
}

func (e *Executor) handleError(key string, err error) {
	if err == nil {
		return
	}
	if e.cfg.ErrorHandler == nil {
		e.log.Warn().Str("key", key).Err(err).Msg("prefetch job failed")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("prefetch error handler panicked")
		}
	}()
	e.cfg.ErrorHandler(key, err)
}

func (e *Executor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(e.cfg.Shards))
}
