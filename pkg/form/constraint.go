package form

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Constraint names used by NewConstraint and serialized definitions.
const (
	ConstraintRequired = "required"
	ConstraintLength   = "length"
	ConstraintPattern  = "pattern"
	ConstraintChoice   = "choice"
)

// Constraint validates a submitted value. Validate returns nil when the value
// is acceptable.
type Constraint interface {
	Name() string
	Validate(value any) error
}

// Required rejects nil, blank strings, false and empty collections.
type Required struct{}

func (Required) Name() string { return ConstraintRequired }

func (Required) Validate(value any) error {
	if isEmpty(value) {
		return fmt.Errorf("value is required")
	}
	return nil
}

// Length bounds the rune length of string values. Zero Max means unbounded.
// Empty values pass so optional fields can carry a Length constraint.
type Length struct {
	Min int
	Max int
}

func (Length) Name() string { return ConstraintLength }

func (c Length) Validate(value any) error {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	n := utf8.RuneCountInString(s)
	if c.Min > 0 && n < c.Min {
		return fmt.Errorf("must be at least %d characters", c.Min)
	}
	if c.Max > 0 && n > c.Max {
		return fmt.Errorf("must be at most %d characters", c.Max)
	}
	return nil
}

// Pattern requires non-empty string values to match a regular expression.
type Pattern struct {
	Expr *regexp.Regexp
}

// NewPattern compiles expr into a Pattern constraint.
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("form: compile pattern %q: %w", expr, err)
	}
	return Pattern{Expr: re}, nil
}

func (Pattern) Name() string { return ConstraintPattern }

func (c Pattern) Validate(value any) error {
	s, ok := value.(string)
	if !ok || s == "" || c.Expr == nil {
		return nil
	}
	if !c.Expr.MatchString(s) {
		return fmt.Errorf("does not match the expected format")
	}
	return nil
}

// Choice requires the value to be one of a fixed list. Values are compared by
// their string form since submitted values are usually strings.
type Choice struct {
	Allowed []string
}

func (Choice) Name() string { return ConstraintChoice }

func (c Choice) Validate(value any) error {
	if isEmpty(value) {
		return nil
	}
	for _, v := range valuesOf(value) {
		if !slices.Contains(c.Allowed, v) {
			return fmt.Errorf("%q is not an allowed choice", v)
		}
	}
	return nil
}

// NewConstraint builds a named constraint from definition options.
func NewConstraint(name string, options map[string]any) (Constraint, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ConstraintRequired:
		return Required{}, nil
	case ConstraintLength:
		minLen, err := intOption(options, "min")
		if err != nil {
			return nil, err
		}
		maxLen, err := intOption(options, "max")
		if err != nil {
			return nil, err
		}
		if maxLen > 0 && minLen > maxLen {
			return nil, fmt.Errorf("form: length min %d exceeds max %d", minLen, maxLen)
		}
		return Length{Min: minLen, Max: maxLen}, nil
	case ConstraintPattern:
		expr, _ := options["pattern"].(string)
		if expr == "" {
			return nil, fmt.Errorf("form: pattern constraint requires option \"pattern\"")
		}
		return NewPattern(expr)
	case ConstraintChoice:
		raw, ok := options["choices"]
		if !ok {
			return nil, fmt.Errorf("form: choice constraint requires option \"choices\"")
		}
		return Choice{Allowed: valuesOf(raw)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstraint, name)
	}
}

func intOption(options map[string]any, key string) (int, error) {
	raw, ok := options[key]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("form: option %q must be an integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("form: option %q must be an integer, got %T", key, raw)
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// valuesOf renders scalars and slices as strings.
func valuesOf(value any) []string {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []string{fmt.Sprint(value)}
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, fmt.Sprint(rv.Index(i).Interface()))
	}
	return out
}
