package optionsrc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stockroom/stockroom-client/internal/envelope"
	"github.com/stockroom/stockroom-client/internal/loader"
)

// ErrFetchOptions is returned when the backend did not deliver an option
// list, either at transport or application level.
var ErrFetchOptions = errors.New("Failed to fetch options")

// Fetcher retrieves the raw option list behind an endpoint.
type Fetcher interface {
	FetchOptions(ctx context.Context, endpoint string, query map[string]string) envelope.Result[[]RawOption]
}

// Source produces a normalized option list from static data or a
// remote endpoint.
type Source[T any] struct {
	fetcher Fetcher
	log     zerolog.Logger

	mu       sync.Mutex
	endpoint string
	query    map[string]string
	queryKey string
	options  []Option[T]
	res      *loader.Resource[[]Option[T]]
}

// Static returns a Source over a fixed list.
func Static[T any](options []Option[T]) *Source[T] {
	s := &Source[T]{options: append([]Option[T](nil), options...), log: zerolog.Nop()}
	return s
}

// Remote returns a Source that loads from endpoint through f.
func Remote[T any](f Fetcher, endpoint string, query map[string]string, log zerolog.Logger) *Source[T] {
	s := &Source[T]{fetcher: f, log: log}
	s.endpoint = endpoint
	s.query = copyQuery(query)
	s.queryKey = QueryKey(query)
	s.res = loader.NewResource(s.fetch, loader.WithLogger(log))
	return s
}

// IsRemote reports whether the Source loads from an endpoint.
func (s *Source[T]) IsRemote() bool { return s.res != nil }

// Endpoint returns the current endpoint, empty for static sources.
func (s *Source[T]) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Options returns the most recently resolved list. It is never nil.
func (s *Source[T]) Options() []Option[T] {
	if s.res != nil {
		if v, ok := s.res.Data(); ok {
			return v
		}
		return []Option[T]{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.options == nil {
		return []Option[T]{}
	}
	return s.options
}

// Find looks up the option whose value formats as key.
func (s *Source[T]) Find(key string) (label string, disabled bool, ok bool) {
	for _, o := range s.Options() {
		if fmt.Sprint(o.Value) == key {
			return o.Label, o.Disabled, true
		}
	}
	return "", false, false
}

// State exposes the loading state of a remote Source. Static sources are
// never loading.
func (s *Source[T]) State() loader.State {
	if s.res == nil {
		return loader.State{}
	}
	return s.res.State()
}

// OnChange forwards loader state changes.
func (s *Source[T]) OnChange(fn func(loader.State)) {
	if s.res != nil {
		s.res.OnChange(fn)
	}
}

// Refresh loads the options. Static sources return immediately.
func (s *Source[T]) Refresh(ctx context.Context) error {
	if s.res == nil {
		return nil
	}
	return s.res.Run(ctx)
}

// SetQuery points the Source at endpoint/query and refreshes only when
// either changed. It reports whether a fetch was issued.
func (s *Source[T]) SetQuery(ctx context.Context, endpoint string, query map[string]string) (bool, error) {
	if s.res == nil {
		return false, nil
	}
	key := QueryKey(query)
	s.mu.Lock()
	if endpoint == s.endpoint && key == s.queryKey {
		s.mu.Unlock()
		return false, nil
	}
	s.endpoint, s.query, s.queryKey = endpoint, copyQuery(query), key
	s.mu.Unlock()
	return true, s.res.Run(ctx)
}

// Close stops any in-flight fetch from updating the Source.
func (s *Source[T]) Close() {
	if s.res != nil {
		s.res.Close()
	}
}

func (s *Source[T]) fetch(ctx context.Context) ([]Option[T], error) {
	s.mu.Lock()
	endpoint, query := s.endpoint, copyQuery(s.query)
	s.mu.Unlock()

	res := s.fetcher.FetchOptions(ctx, endpoint, query)
	if !res.Success {
		s.log.Warn().Str("endpoint", endpoint).Int("status", res.Status).Msg("option fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchOptions, res.Err)
	}
	opts, err := Normalize[T](res.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrFetchOptions, endpoint, err)
	}
	return opts, nil
}

// QueryKey serializes query canonically so that equal maps compare equal.
func QueryKey(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(query[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
		b.WriteByte(';')
	}
	return b.String()
}

func copyQuery(q map[string]string) map[string]string {
	if q == nil {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
