package condition

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// NameExactMatch identifies the ExactMatch condition in registries and
	// serialized definitions.
	NameExactMatch = "exact-match"

	optionField  = "field"
	optionValues = "values"
)

// ExactMatch matches when the referenced field holds one of a fixed set of
// values. Equality is strict: the dynamic type must match as well as the
// value, so "0" never matches false and 1 never matches "1".
type ExactMatch struct {
	field  string
	values []any
}

// NewExactMatch builds an ExactMatch from the "field" and "values" options.
// "values" may be a slice of any element type or a single scalar.
func NewExactMatch(options Options) (*ExactMatch, error) {
	field, err := requireField(NameExactMatch, options)
	if err != nil {
		return nil, err
	}
	raw, ok := options[optionValues]
	if !ok || raw == nil {
		return nil, &MissingOptionError{Condition: NameExactMatch, Option: optionValues}
	}
	return &ExactMatch{field: field, values: flattenValues(raw)}, nil
}

// ExactMatchOf is a convenience constructor for code-built forms.
func ExactMatchOf(field string, values ...any) (*ExactMatch, error) {
	return NewExactMatch(Options{optionField: field, optionValues: values})
}

func (c *ExactMatch) Name() string { return NameExactMatch }

// Field returns the name of the referenced field.
func (c *ExactMatch) Field() string { return c.field }

// Values returns a copy of the acceptable values.
func (c *ExactMatch) Values() []any { return append([]any(nil), c.values...) }

func (c *ExactMatch) Options() Options {
	return Options{optionField: c.field, optionValues: c.Values()}
}

// Matches reports whether values[field] strictly equals one of the configured
// values. A missing key never matches.
func (c *ExactMatch) Matches(values map[string]any) bool {
	observed, ok := values[c.field]
	if !ok {
		return false
	}
	for _, candidate := range c.values {
		if strictEqual(observed, candidate) {
			return true
		}
	}
	return false
}

func requireField(name string, options Options) (string, error) {
	raw, ok := options[optionField]
	if !ok || raw == nil {
		return "", &MissingOptionError{Condition: name, Option: optionField}
	}
	field, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s option %q must be a string, got %T", ErrInvalidOption, name, optionField, raw)
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return "", &MissingOptionError{Condition: name, Option: optionField}
	}
	return field, nil
}

func flattenValues(raw any) []any {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{raw}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}

func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Struct, reflect.Array:
		// Comparable at the type level, yet == panics when a nested interface
		// holds a slice or map.
		return reflect.DeepEqual(a, b)
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
