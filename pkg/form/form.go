package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Form is the root of an element tree. It is built single-threaded, then
// finalized; a finalized form rejects every mutation and can be shared by
// concurrent renders.
type Form struct {
	name      string
	action    string
	method    string
	elements  []Element
	finalized bool
}

// Option configures a Form at construction.
type Option func(*Form)

// WithAction sets the submission target.
func WithAction(action string) Option {
	return func(f *Form) { f.action = strings.TrimSpace(action) }
}

// WithMethod sets the submission method. Defaults to POST.
func WithMethod(method string) Option {
	return func(f *Form) {
		if method = strings.ToUpper(strings.TrimSpace(method)); method != "" {
			f.method = method
		}
	}
}

// New constructs an empty form.
func New(name string, opts ...Option) (*Form, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	f := &Form{name: name, method: "POST"}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

func (f *Form) Name() string   { return f.name }
func (f *Form) Action() string { return f.action }
func (f *Form) Method() string { return f.method }

// Elements returns the top-level elements in order.
func (f *Form) Elements() []Element {
	return append([]Element(nil), f.elements...)
}

// Add appends top-level elements. Field names must stay unique across the
// whole tree.
func (f *Form) Add(elements ...Element) error {
	if f.finalized {
		return &ImmutableStateError{Target: fmt.Sprintf("form %q", f.name), Operation: "add elements to"}
	}
	existing := make(map[string]struct{})
	for _, field := range f.Fields() {
		existing[field.Name()] = struct{}{}
	}
	for _, el := range elements {
		if el == nil {
			return ErrNilElement
		}
		if err := checkNewFields(el, existing); err != nil {
			return err
		}
	}
	if err := attachAll(nil, elements); err != nil {
		return err
	}
	f.elements = append(f.elements, elements...)
	return nil
}

// checkNewFields records the field names under el in existing and fails on
// the first name already present.
func checkNewFields(el Element, existing map[string]struct{}) error {
	return walkElements([]Element{el}, nil, func(e Element, _ int) error {
		fe, ok := e.(*FieldElement)
		if !ok {
			return nil
		}
		name := fe.Field().Name()
		if _, dup := existing[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		existing[name] = struct{}{}
		return nil
	})
}

// Finalize verifies field-name uniqueness and freezes every element and
// field. Calling Finalize twice is a no-op.
func (f *Form) Finalize() error {
	if f.finalized {
		return nil
	}
	seen := make(map[string]struct{})
	err := f.Walk(func(el Element, _ int) error {
		if fe, ok := el.(*FieldElement); ok {
			name := fe.Field().Name()
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateField, name)
			}
			seen[name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return err
	}
	_ = f.Walk(func(el Element, _ int) error {
		el.Freeze()
		if fe, ok := el.(*FieldElement); ok {
			fe.Field().Freeze()
		}
		return nil
	})
	f.finalized = true
	return nil
}

func (f *Form) Finalized() bool { return f.finalized }

// WalkFunc is called for each visited element with its depth (0 for
// top-level elements). Returning ErrSkipChildren skips the element's subtree;
// any other error stops the walk.
type WalkFunc func(el Element, depth int) error

// ErrSkipChildren may be returned by a WalkFunc to skip an element's children.
var ErrSkipChildren = errors.New("form: skip children")

// Walk visits every element depth-first in document order, ignoring
// conditions.
func (f *Form) Walk(fn WalkFunc) error {
	return walkElements(f.elements, nil, fn)
}

// WalkActive visits only elements that are active for values and whose
// ancestors are all active.
func (f *Form) WalkActive(values map[string]any, fn WalkFunc) error {
	return walkElements(f.elements, func(el Element) bool { return el.Active(values) }, fn)
}

func walkElements(elements []Element, include func(Element) bool, fn WalkFunc) error {
	var walk func(list []Element, depth int) error
	walk = func(list []Element, depth int) error {
		for _, el := range list {
			if include != nil && !include(el) {
				continue
			}
			err := fn(el, depth)
			if errors.Is(err, ErrSkipChildren) {
				continue
			}
			if err != nil {
				return err
			}
			if err := walk(el.Children(), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(elements, 0)
}

// Fields returns every field in document order.
func (f *Form) Fields() []Field {
	var fields []Field
	_ = f.Walk(func(el Element, _ int) error {
		if fe, ok := el.(*FieldElement); ok {
			fields = append(fields, fe.Field())
		}
		return nil
	})
	return fields
}

// Field looks a field up by name.
func (f *Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields() {
		if field.Name() == name {
			return field, true
		}
	}
	return nil, false
}

// ActiveFields returns the fields whose element and ancestors are active for
// values.
func (f *Form) ActiveFields(values map[string]any) []Field {
	var fields []Field
	_ = f.WalkActive(values, func(el Element, _ int) error {
		if fe, ok := el.(*FieldElement); ok {
			fields = append(fields, fe.Field())
		}
		return nil
	})
	return fields
}

// Defaults collects each field's "default" option into a value mapping.
func (f *Form) Defaults() map[string]any {
	values := make(map[string]any)
	for _, field := range f.Fields() {
		if value, ok := field.Option(OptionDefault); ok {
			values[field.Name()] = value
		}
	}
	return values
}

// ValidationErrors maps field names to validation messages.
type ValidationErrors map[string][]string

// Error implements error so a non-empty result can be returned directly.
func (v ValidationErrors) Error() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(v[name], "; ")))
	}
	return "form: validation failed: " + strings.Join(parts, ", ")
}

// Validate runs the constraints of every active field against values.
// Inactive fields are never validated, so a required field hidden by a
// condition does not block submission. Returns nil when everything passes.
func (f *Form) Validate(values map[string]any) ValidationErrors {
	result := make(ValidationErrors)
	for _, field := range f.ActiveFields(values) {
		for _, err := range field.Validate(values[field.Name()]) {
			result[field.Name()] = append(result[field.Name()], err.Error())
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
