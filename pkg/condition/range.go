package condition

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// NameRange identifies the Range condition.
const NameRange = "range"

const (
	optionMin = "min"
	optionMax = "max"
)

// Range matches when the referenced field holds a number within [min, max].
// Either bound may be omitted but not both. Submitted values usually arrive as
// strings, so decimal strings are parsed; any other type never matches.
type Range struct {
	field    string
	min, max *float64
}

// NewRange builds a Range condition from the "field", "min" and "max" options.
func NewRange(options Options) (*Range, error) {
	field, err := requireField(NameRange, options)
	if err != nil {
		return nil, err
	}
	c := &Range{field: field}
	if c.min, err = boundOption(options, optionMin); err != nil {
		return nil, err
	}
	if c.max, err = boundOption(options, optionMax); err != nil {
		return nil, err
	}
	if c.min == nil && c.max == nil {
		return nil, &MissingOptionError{Condition: NameRange, Option: optionMin}
	}
	if c.min != nil && c.max != nil && *c.min > *c.max {
		return nil, fmt.Errorf("%w: range min %v exceeds max %v", ErrInvalidOption, *c.min, *c.max)
	}
	return c, nil
}

func (c *Range) Name() string { return NameRange }

func (c *Range) Options() Options {
	opts := Options{optionField: c.field}
	if c.min != nil {
		opts[optionMin] = *c.min
	}
	if c.max != nil {
		opts[optionMax] = *c.max
	}
	return opts
}

func (c *Range) Matches(values map[string]any) bool {
	observed, ok := values[c.field]
	if !ok {
		return false
	}
	number, ok := toFloat(observed)
	if !ok {
		return false
	}
	if c.min != nil && number < *c.min {
		return false
	}
	if c.max != nil && number > *c.max {
		return false
	}
	return true
}

func boundOption(options Options, key string) (*float64, error) {
	raw, ok := options[key]
	if !ok || raw == nil {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("%w: range option %q must be numeric, got %T", ErrInvalidOption, key, raw)
	}
	return &value, nil
}

// toFloat rejects NaN and infinities: NaN fails every comparison and would
// otherwise fall inside any range.
func toFloat(value any) (float64, bool) {
	f, ok := numeric(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numeric(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
