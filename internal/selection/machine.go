// Package selection computes the current selection and its display text
// over a resolved option list.
package selection

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/stockroom/stockroom-client/internal/optionsrc"
)

var (
	// ErrNotOpen is returned by Toggle while the selection surface is closed.
	ErrNotOpen = errors.New("selection is not open")
	// ErrDisabled is returned when toggling a disabled option.
	ErrDisabled = errors.New("option is disabled")
)

// Phase is the state of the selection surface.
type Phase int

const (
	Closed Phase = iota
	Open
)

func (p Phase) String() string {
	if p == Open {
		return "open"
	}
	return "closed"
}

// Value is the committed selection. Exactly one of One/Many is meaningful,
// depending on Multi.
type Value[T comparable] struct {
	Multi bool
	One   *T
	Many  []T
}

// Empty reports whether nothing is selected.
func (v Value[T]) Empty() bool {
	if v.Multi {
		return len(v.Many) == 0
	}
	return v.One == nil
}

// Machine tracks single or multi selection over options.
type Machine[T comparable] struct {
	mu       sync.Mutex
	multi    bool
	options  []optionsrc.Option[T]
	phase    Phase
	one      *T
	many     []T
	onChange []func(Value[T])
}

// Single returns a single-select machine, optionally preselected.
func Single[T comparable](options []optionsrc.Option[T], initial *T) *Machine[T] {
	m := &Machine[T]{options: options}
	if initial != nil {
		v := *initial
		m.one = &v
	}
	return m
}

// Multi returns a multi-select machine preselected with initial.
// Duplicates in initial are collapsed, keeping first occurrence.
func Multi[T comparable](options []optionsrc.Option[T], initial []T) *Machine[T] {
	m := &Machine[T]{options: options, multi: true}
	for _, v := range initial {
		if indexOf(m.many, v) < 0 {
			m.many = append(m.many, v)
		}
	}
	return m
}

// IsMulti reports the selection mode.
func (m *Machine[T]) IsMulti() bool { return m.multi }

// Phase returns the current surface state.
func (m *Machine[T]) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// SetOptions replaces the option list, e.g. after a refetch. The committed
// value is kept even if it no longer matches an option.
func (m *Machine[T]) SetOptions(options []optionsrc.Option[T]) {
	m.mu.Lock()
	m.options = options
	m.mu.Unlock()
}

// OnChange registers fn to receive the committed value after each toggle
// or Clear.
func (m *Machine[T]) OnChange(fn func(Value[T])) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// Open shows the selection surface. Opening an open machine is a no-op.
func (m *Machine[T]) Open() {
	m.mu.Lock()
	m.phase = Open
	m.mu.Unlock()
}

// Close hides the selection surface.
func (m *Machine[T]) Close() {
	m.mu.Lock()
	m.phase = Closed
	m.mu.Unlock()
}

// Toggle selects v. In multi mode v is added if absent and removed if
// present; in single mode v replaces the value and the surface closes.
func (m *Machine[T]) Toggle(v T) error {
	m.mu.Lock()
	if m.phase != Open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if opt := m.find(v); opt != nil && opt.Disabled {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDisabled, opt.Label)
	}
	if m.multi {
		if i := indexOf(m.many, v); i >= 0 {
			m.many = append(m.many[:i:i], m.many[i+1:]...)
		} else {
			m.many = append(m.many, v)
		}
	} else {
		nv := v
		m.one = &nv
		m.phase = Closed
	}
	m.commitLocked()
	return nil
}

// Clear drops the selection without changing the phase. Observers receive
// the empty value.
func (m *Machine[T]) Clear() {
	m.mu.Lock()
	m.one, m.many = nil, nil
	m.commitLocked()
}

// commitLocked releases m.mu and hands the committed value to observers.
func (m *Machine[T]) commitLocked() {
	val := m.valueLocked()
	fns := slices.Clone(m.onChange)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(val)
	}
}

// Value returns a copy of the committed selection.
func (m *Machine[T]) Value() Value[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valueLocked()
}

// IsSelected reports whether v is part of the selection.
func (m *Machine[T]) IsSelected(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.multi {
		return indexOf(m.many, v) >= 0
	}
	return m.one != nil && *m.one == v
}

// SelectedOption returns the option matching a single-select value, or nil.
func (m *Machine[T]) SelectedOption() *optionsrc.Option[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.multi || m.one == nil {
		return nil
	}
	if opt := m.find(*m.one); opt != nil {
		o := *opt
		return &o
	}
	return nil
}

// SelectedOptions returns the options whose value is selected, in option
// order.
func (m *Machine[T]) SelectedOptions() []optionsrc.Option[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []optionsrc.Option[T]
	for _, o := range m.options {
		if m.multi {
			if indexOf(m.many, o.Value) >= 0 {
				out = append(out, o)
			}
		} else if m.one != nil && *m.one == o.Value {
			out = append(out, o)
		}
	}
	return out
}

// DisplayText renders the selection for a closed trigger.
func (m *Machine[T]) DisplayText(placeholder string) string {
	sel := m.SelectedOptions()
	switch len(sel) {
	case 0:
		return placeholder
	case 1:
		return sel[0].Label
	default:
		return fmt.Sprintf("%d selected", len(sel))
	}
}

func (m *Machine[T]) valueLocked() Value[T] {
	if m.multi {
		return Value[T]{Multi: true, Many: append([]T(nil), m.many...)}
	}
	if m.one == nil {
		return Value[T]{}
	}
	v := *m.one
	return Value[T]{One: &v}
}

func (m *Machine[T]) find(v T) *optionsrc.Option[T] {
	for i := range m.options {
		if m.options[i].Value == v {
			return &m.options[i]
		}
	}
	return nil
}

func indexOf[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
