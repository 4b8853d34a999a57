// Package optionsrc resolves selectable option lists from either static data
// or a backend endpoint, normalizing both into []Option.
package optionsrc

import (
	"bytes"
	"encoding/json"
	"hash/fnv"
	"math"
	"strconv"
)

// Option is one selectable entry. Options compare by Value.
type Option[T any] struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Value    T      `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// RawOption is the wire shape of an option as the backend sends it.
type RawOption struct {
	ID       *int64          `json:"id,omitempty"`
	Label    string          `json:"label"`
	Value    json.RawMessage `json:"value"`
	Disabled bool            `json:"disabled,omitempty"`
}

// StableID derives the id for a raw option. A backend-supplied id wins;
// an integral numeric value is used as-is; anything else hashes label and
// value so the id does not depend on list position.
func StableID(r RawOption) int64 {
	if r.ID != nil {
		return *r.ID
	}
	raw := bytes.TrimSpace(r.Value)
	if n, ok := integral(raw); ok {
		return n
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(r.Label))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(raw)
	return int64(h.Sum64() & math.MaxInt64)
}

func integral(raw []byte) (int64, bool) {
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	return int64(f), true
}

// Normalize decodes raw options into typed Options.
func Normalize[T any](raw []RawOption) ([]Option[T], error) {
	out := make([]Option[T], 0, len(raw))
	for _, r := range raw {
		var v T
		if len(r.Value) > 0 {
			if err := json.Unmarshal(r.Value, &v); err != nil {
				return nil, err
			}
		}
		out = append(out, Option[T]{
			ID:       StableID(r),
			Label:    r.Label,
			Value:    v,
			Disabled: r.Disabled,
		})
	}
	return out, nil
}
