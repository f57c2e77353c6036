package condition

import "reflect"

// NameNotEmpty identifies the NotEmpty condition.
const NameNotEmpty = "not-empty"

// NotEmpty matches when the referenced field is present and holds a non-zero
// value. Empty strings, false, nil and empty collections count as empty.
type NotEmpty struct {
	field string
}

// NewNotEmpty builds a NotEmpty condition from the "field" option.
func NewNotEmpty(options Options) (*NotEmpty, error) {
	field, err := requireField(NameNotEmpty, options)
	if err != nil {
		return nil, err
	}
	return &NotEmpty{field: field}, nil
}

func (c *NotEmpty) Name() string { return NameNotEmpty }

func (c *NotEmpty) Options() Options { return Options{optionField: c.field} }

func (c *NotEmpty) Matches(values map[string]any) bool {
	observed, ok := values[c.field]
	if !ok || observed == nil {
		return false
	}
	rv := reflect.ValueOf(observed)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
