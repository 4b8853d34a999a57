package loader

import (
	"context"
	"sync"
)

// Fetch produces the value a Resource holds.
type Fetch[T any] func(ctx context.Context) (T, error)

// Resource is a Loader that also keeps the data of the latest successful
// Run. A failed Run leaves the previous data in place.
type Resource[T any] struct {
	*Loader

	fetch Fetch[T]

	dmu     sync.Mutex
	data    T
	hasData bool
}

// NewResource returns an idle Resource for fetch.
func NewResource[T any](fetch Fetch[T], opts ...Option) *Resource[T] {
	r := &Resource[T]{fetch: fetch}
	r.Loader = New(nil, opts...)
	return r
}

// Run fetches and, if this Run is still the latest, stores the value.
func (r *Resource[T]) Run(ctx context.Context) error {
	gen, ok := r.begin()
	if !ok {
		return ErrClosed
	}
	v, err := r.fetch(ctx)
	if err == nil {
		// data is swapped inside the commit so readers never see a new
		// value paired with a stale Loading flag.
		if r.commit(gen, func() {
			r.dmu.Lock()
			r.data, r.hasData = v, true
			r.dmu.Unlock()
			r.state = State{Loading: false, Err: nil, Generation: gen}
		}) {
			runsTotal.WithLabelValues("ok").Inc()
		}
		return nil
	}
	r.finish(gen, err)
	return err
}

// Data returns the latest fetched value and whether one exists.
func (r *Resource[T]) Data() (T, bool) {
	r.dmu.Lock()
	defer r.dmu.Unlock()
	return r.data, r.hasData
}

// Set replaces the held value without fetching, e.g. for static data.
func (r *Resource[T]) Set(v T) {
	r.dmu.Lock()
	r.data, r.hasData = v, true
	r.dmu.Unlock()
}
