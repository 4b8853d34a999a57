// Package forms describes data-entry forms as a closed set of field kinds
// and validates submitted values against them.
package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Base holds what every field kind shares.
type Base struct {
	Key      string
	Label    string
	Required bool
}

// Field is one form input. The set of implementations is closed: only the
// kinds declared in this package satisfy it.
type Field interface {
	Spec() Base
	isField()
}

// TextField is a single-line text input.
type TextField struct {
	Base
	MaxLen int
}

// TextAreaField is a multi-line text input.
type TextAreaField struct {
	Base
	MaxLen int
	Rows   int
}

// NumberField accepts a decimal number within optional bounds.
type NumberField struct {
	Base
	Min, Max *decimal.Decimal
	Integer  bool
}

// DateField accepts a date in Layout (2006-01-02 when empty).
type DateField struct {
	Base
	Layout   string
	Min, Max *time.Time
}

// SwitchField is a boolean toggle. Required has no effect.
type SwitchField struct {
	Base
}

// OptionSet is the view of an option source a SelectField needs.
// *optionsrc.Source satisfies it.
type OptionSet interface {
	Refresh(ctx context.Context) error
	IsRemote() bool
	Find(key string) (label string, disabled bool, ok bool)
}

// SelectField picks one value, or several when Multi is set, from Options.
type SelectField struct {
	Base
	Multi   bool
	Options OptionSet
}

func (f TextField) Spec() Base     { return f.Base }
func (f TextAreaField) Spec() Base { return f.Base }
func (f NumberField) Spec() Base   { return f.Base }
func (f DateField) Spec() Base     { return f.Base }
func (f SwitchField) Spec() Base   { return f.Base }
func (f SelectField) Spec() Base   { return f.Base }

func (TextField) isField()     {}
func (TextAreaField) isField() {}
func (NumberField) isField()   {}
func (DateField) isField()     {}
func (SwitchField) isField()   {}
func (SelectField) isField()   {}

func (f DateField) layout() string {
	if f.Layout == "" {
		return "2006-01-02"
	}
	return f.Layout
}

// Visitor receives a field by its concrete kind.
type Visitor interface {
	Text(TextField)
	TextArea(TextAreaField)
	Number(NumberField)
	Date(DateField)
	Switch(SwitchField)
	Select(SelectField)
}

// Field kinds have value receivers, so a pointer to a kind is a Field as
// well. concrete reduces it to the value form; a nil pointer yields nil.
func concrete(f Field) Field {
	switch p := f.(type) {
	case *TextField:
		if p != nil {
			return *p
		}
	case *TextAreaField:
		if p != nil {
			return *p
		}
	case *NumberField:
		if p != nil {
			return *p
		}
	case *DateField:
		if p != nil {
			return *p
		}
	case *SwitchField:
		if p != nil {
			return *p
		}
	case *SelectField:
		if p != nil {
			return *p
		}
	default:
		return f
	}
	return nil
}

// Visit dispatches f to the matching Visitor method. Pointer and value
// forms of a kind are treated alike.
func Visit(f Field, v Visitor) {
	switch f := concrete(f).(type) {
	case TextField:
		v.Text(f)
	case TextAreaField:
		v.TextArea(f)
	case NumberField:
		v.Number(f)
	case DateField:
		v.Date(f)
	case SwitchField:
		v.Switch(f)
	case SelectField:
		v.Select(f)
	default:
		panic(fmt.Sprintf("forms: unhandled field kind %T", f))
	}
}
