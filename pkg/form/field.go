package form

import (
	"fmt"
	"maps"
	"strings"
)

// Field types understood by the built-in renderers. Custom types are allowed;
// they simply need a renderer registered under the same kind.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeEmail    = "email"
	TypePassword = "password"
	TypeNumber   = "number"
	TypeHidden   = "hidden"
	TypeCheckbox = "checkbox"
	TypeSelect   = "select"
	TypeRadio    = "radio"
)

// Well-known option keys.
const (
	OptionDefault     = "default"
	OptionPlaceholder = "placeholder"
	OptionHelp        = "help"
	OptionChoices     = "choices"
)

// Options holds per-field configuration such as placeholder text or the list
// of choices for a select.
type Options map[string]any

// Field describes one data-entry input. Kind selects the renderer; Type is the
// semantic input type. For plain fields the two are equal, specialised fields
// may report a different kind (a captcha field renders differently from a text
// field but submits text).
type Field interface {
	Name() string
	Kind() string
	Type() string
	SetType(typ string) error
	Options() Options
	Option(key string) (any, bool)
	SetOption(key string, value any) error
	Constraints() []Constraint
	AddConstraint(c Constraint) error
	Validate(value any) []error
	Freeze()
	Frozen() bool
}

// FieldOption configures a BaseField at construction.
type FieldOption func(*BaseField)

// WithOption sets a single option.
func WithOption(key string, value any) FieldOption {
	return func(f *BaseField) {
		if key = strings.TrimSpace(key); key != "" {
			f.options[key] = value
		}
	}
}

// WithOptions merges the supplied options.
func WithOptions(options map[string]any) FieldOption {
	return func(f *BaseField) {
		for key, value := range options {
			if key = strings.TrimSpace(key); key != "" {
				f.options[key] = value
			}
		}
	}
}

// WithConstraints attaches validation constraints.
func WithConstraints(constraints ...Constraint) FieldOption {
	return func(f *BaseField) {
		for _, c := range constraints {
			if c != nil {
				f.constraints = append(f.constraints, c)
			}
		}
	}
}

// BaseField is the default Field implementation. Its type, options and
// constraints can be changed until it is frozen.
type BaseField struct {
	name        string
	typ         string
	options     Options
	constraints []Constraint
	frozen      bool
}

var _ Field = (*BaseField)(nil)

// NewField constructs a field. Name and type are required.
func NewField(name, typ string, opts ...FieldOption) (*BaseField, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return nil, fmt.Errorf("%w: field %q", ErrTypeRequired, name)
	}
	f := &BaseField{name: name, typ: typ, options: make(Options)}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// MustField panics when NewField fails. Intended for code-built fixtures.
func MustField(name, typ string, opts ...FieldOption) *BaseField {
	f, err := NewField(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *BaseField) Name() string { return f.name }

func (f *BaseField) Kind() string { return f.typ }

func (f *BaseField) Type() string { return f.typ }

func (f *BaseField) SetType(typ string) error {
	if f.frozen {
		return &ImmutableStateError{Target: fmt.Sprintf("field %q", f.name), Operation: "set type of"}
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return fmt.Errorf("%w: field %q", ErrTypeRequired, f.name)
	}
	f.typ = typ
	return nil
}

// Options returns a copy of the field options.
func (f *BaseField) Options() Options {
	return maps.Clone(f.options)
}

func (f *BaseField) Option(key string) (any, bool) {
	value, ok := f.options[key]
	return value, ok
}

func (f *BaseField) SetOption(key string, value any) error {
	if f.frozen {
		return &ImmutableStateError{Target: fmt.Sprintf("field %q", f.name), Operation: "set option on"}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("form: option key is required for field %q", f.name)
	}
	f.options[key] = value
	return nil
}

func (f *BaseField) Constraints() []Constraint {
	return append([]Constraint(nil), f.constraints...)
}

func (f *BaseField) AddConstraint(c Constraint) error {
	if f.frozen {
		return &ImmutableStateError{Target: fmt.Sprintf("field %q", f.name), Operation: "add constraint to"}
	}
	if c == nil {
		return fmt.Errorf("form: constraint is nil for field %q", f.name)
	}
	f.constraints = append(f.constraints, c)
	return nil
}

// Validate runs every constraint against value and returns the failures.
func (f *BaseField) Validate(value any) []error {
	var errs []error
	for _, c := range f.constraints {
		if err := c.Validate(value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (f *BaseField) Freeze() { f.frozen = true }

func (f *BaseField) Frozen() bool { return f.frozen }

// StringOption returns the option as a trimmed string, or "" when absent or
// not a string.
func StringOption(f Field, key string) string {
	if f == nil {
		return ""
	}
	raw, ok := f.Option(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return strings.TrimSpace(s)
}
