package forms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Values are raw submitted inputs keyed by Field key. Multi-selects use a
// comma-separated list.
type Values map[string]string

// Problem is one rejected field.
type Problem struct {
	Key     string
	Message string
}

// ValidationError lists every rejected field in form order.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Key + ": " + p.Message
	}
	return "invalid form: " + strings.Join(msgs, "; ")
}

// Messages returns the problems as display strings.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.Message
	}
	return out
}

// Form is an ordered list of fields.
type Form struct {
	Title  string
	Fields []Field
}

// Resolve refreshes every remote option set. All fields are attempted;
// failures are joined.
func (f *Form) Resolve(ctx context.Context) error {
	var errs []error
	for _, fld := range f.Fields {
		sel, ok := concrete(fld).(SelectField)
		if !ok || sel.Options == nil || !sel.Options.IsRemote() {
			continue
		}
		if err := sel.Options.Refresh(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sel.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks values against every field and returns a
// *ValidationError when anything is wrong.
func (f *Form) Validate(values Values) error {
	v := &validator{values: values}
	for _, fld := range f.Fields {
		Visit(fld, v)
	}
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

type validator struct {
	values   Values
	problems []Problem
}

func (v *validator) add(key, format string, args ...any) {
	v.problems = append(v.problems, Problem{Key: key, Message: fmt.Sprintf(format, args...)})
}

// present returns the trimmed value and reports a missing required field.
func (v *validator) present(b Base) (string, bool) {
	raw := strings.TrimSpace(v.values[b.Key])
	if raw == "" {
		if b.Required {
			v.add(b.Key, "%s is required", b.Label)
		}
		return "", false
	}
	return raw, true
}

func (v *validator) Text(f TextField) {
	if s, ok := v.present(f.Base); ok && f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
		v.add(f.Key, "%s must be at most %d characters", f.Label, f.MaxLen)
	}
}

func (v *validator) TextArea(f TextAreaField) {
	if s, ok := v.present(f.Base); ok && f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
		v.add(f.Key, "%s must be at most %d characters", f.Label, f.MaxLen)
	}
}

func (v *validator) Number(f NumberField) {
	s, ok := v.present(f.Base)
	if !ok {
		return
	}
	n, err := decimal.NewFromString(s)
	if err != nil {
		v.add(f.Key, "%s must be a number", f.Label)
		return
	}
	if f.Min != nil && n.LessThan(*f.Min) {
		v.add(f.Key, "%s must be at least %s", f.Label, f.Min)
	}
	if f.Max != nil && n.GreaterThan(*f.Max) {
		v.add(f.Key, "%s must be at most %s", f.Label, f.Max)
	}
	if f.Integer && !n.Equal(n.Truncate(0)) {
		v.add(f.Key, "%s must be a whole number", f.Label)
	}
}

func (v *validator) Date(f DateField) {
	s, ok := v.present(f.Base)
	if !ok {
		return
	}
	d, err := time.Parse(f.layout(), s)
	if err != nil {
		v.add(f.Key, "%s must be a date like %s", f.Label, f.layout())
		return
	}
	if f.Min != nil && d.Before(*f.Min) {
		v.add(f.Key, "%s must not be before %s", f.Label, f.Min.Format(f.layout()))
	}
	if f.Max != nil && d.After(*f.Max) {
		v.add(f.Key, "%s must not be after %s", f.Label, f.Max.Format(f.layout()))
	}
}

func (v *validator) Switch(f SwitchField) {
	s, ok := v.values[f.Key]
	if !ok || s == "" {
		return
	}
	if _, err := strconv.ParseBool(s); err != nil {
		v.add(f.Key, "%s must be on or off", f.Label)
	}
}

func (v *validator) Select(f SelectField) {
	s, ok := v.present(f.Base)
	if !ok {
		return
	}
	if f.Options == nil {
		return
	}
	keys := []string{s}
	if f.Multi {
		keys = strings.Split(s, ",")
	}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		_, disabled, found := f.Options.Find(k)
		switch {
		case !found:
			v.add(f.Key, "%q is not a valid %s", k, f.Label)
		case disabled:
			v.add(f.Key, "%q is not available for %s", k, f.Label)
		}
	}
}
