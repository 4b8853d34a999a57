package optionsrc

import (
	"context"
	"sync"
)

// Memo caches values by key and never refetches a key already present.
// Failed loads are not cached. Concurrent loads of the same missing key
// may both run; the first to store wins. A load that was started before
// the latest Forget or Reset is returned to its caller but not stored.
type Memo[K comparable, V any] struct {
	load func(context.Context, K) (V, error)

	mu  sync.RWMutex
	m   map[K]V
	gen uint64
}

// NewMemo returns an empty Memo backed by load.
func NewMemo[K comparable, V any](load func(context.Context, K) (V, error)) *Memo[K, V] {
	return &Memo[K, V]{load: load, m: make(map[K]V)}
}

// Get returns the cached value for k, loading it on first use.
func (m *Memo[K, V]) Get(ctx context.Context, k K) (V, error) {
	m.mu.RLock()
	v, ok := m.m[k]
	gen := m.gen
	m.mu.RUnlock()
	if ok {
		return v, nil
	}
	v, err := m.load(ctx, k)
	if err != nil {
		var zero V
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return v, nil
	}
	if existing, ok := m.m[k]; ok {
		return existing, nil
	}
	m.m[k] = v
	return v, nil
}

// Peek returns the cached value without loading.
func (m *Memo[K, V]) Peek(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[k]
	return v, ok
}

// Forget drops k so the next Get reloads it.
func (m *Memo[K, V]) Forget(k K) {
	m.mu.Lock()
	delete(m.m, k)
	m.gen++
	m.mu.Unlock()
}

// Len reports the number of cached keys.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// Reset drops every cached key.
func (m *Memo[K, V]) Reset() {
	m.mu.Lock()
	m.m = make(map[K]V)
	m.gen++
	m.mu.Unlock()
}
