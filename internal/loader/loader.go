// Package loader tracks the loading/error state of one asynchronous
// operation.
//
// Every Run takes a fresh generation number. Only the completion that
// belongs to the most recently issued generation may write state, so a slow
// earlier call can never overwrite the outcome of a later one, and nothing
// is written once the loader has been closed.
package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("loader closed")
	// ErrNoOp is returned when a Loader was built without an operation.
	ErrNoOp = errors.New("loader has no operation")
)

// Op is the operation a Loader runs.
type Op func(ctx context.Context) error

// State is a snapshot of a Loader.
type State struct {
	Loading    bool
	Err        error
	Generation uint64
}

// Loader runs Op and records its outcome.
type Loader struct {
	op  Op
	log zerolog.Logger

	mu        sync.Mutex
	state     State
	latest    uint64
	closed    bool
	listeners []func(State)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for discarded results.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// New returns an idle Loader for op.
func New(op Op, opts ...Option) *Loader {
	l := &Loader{op: op, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnChange registers fn to be called after every accepted state change.
// fn runs without the loader lock held.
func (l *Loader) OnChange(fn func(State)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// State returns the current snapshot.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Loading reports whether the latest Run is still in flight.
func (l *Loader) Loading() bool { return l.State().Loading }

// Err returns the error of the latest completed Run.
func (l *Loader) Err() error { return l.State().Err }

// Run invokes the operation and returns its error. Concurrent calls are
// allowed; only the last one issued updates state.
func (l *Loader) Run(ctx context.Context) error {
	if l.op == nil {
		return ErrNoOp
	}
	gen, ok := l.begin()
	if !ok {
		return ErrClosed
	}
	err := l.op(ctx)
	l.finish(gen, err)
	return err
}

// Close discards every in-flight result. It is idempotent.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.latest++
}

func (l *Loader) begin() (uint64, bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, false
	}
	l.latest++
	gen := l.latest
	l.state = State{Loading: true, Err: l.state.Err, Generation: gen}
	snap, fns := l.state, l.snapshotListeners()
	l.mu.Unlock()

	runsTotal.WithLabelValues("started").Inc()
	notify(fns, snap)
	return gen, true
}

// commit applies mutate under the lock if gen is still current.
func (l *Loader) commit(gen uint64, mutate func()) bool {
	l.mu.Lock()
	if gen != l.latest || l.closed {
		l.mu.Unlock()
		staleTotal.Inc()
		l.log.Debug().Uint64("generation", gen).Msg("discarding stale load result")
		return false
	}
	if mutate != nil {
		mutate()
	}
	snap, fns := l.state, l.snapshotListeners()
	l.mu.Unlock()
	notify(fns, snap)
	return true
}

func (l *Loader) finish(gen uint64, err error) bool {
	accepted := l.commit(gen, func() {
		l.state = State{Loading: false, Err: err, Generation: gen}
	})
	if accepted {
		if err != nil {
			runsTotal.WithLabelValues("error").Inc()
		} else {
			runsTotal.WithLabelValues("ok").Inc()
		}
	}
	return accepted
}

func (l *Loader) snapshotListeners() []func(State) {
	if len(l.listeners) == 0 {
		return nil
	}
	out := make([]func(State), len(l.listeners))
	copy(out, l.listeners)
	return out
}

func notify(fns []func(State), s State) {
	for _, fn := range fns {
		fn(s)
	}
}
