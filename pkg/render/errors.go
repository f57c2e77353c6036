package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sitegear/go-sitegear/pkg/form"
)

var (
	// ErrUnsupportedType is matched by every *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("render: unsupported type")

	// ErrDuplicateKind is returned when a kind is registered twice.
	ErrDuplicateKind = errors.New("render: kind already registered")

	ErrKindRequired   = errors.New("render: kind is required")
	ErrNilConstructor = errors.New("render: constructor is nil")
	ErrNilFactory     = errors.New("render: factory is nil")
)

// UnsupportedTypeError reports a node whose kind has no registered renderer.
// It is recoverable per node: under the default policy the node is skipped
// and its siblings still render.
type UnsupportedTypeError struct {
	// Category is the registry that was consulted ("element", "field", ...).
	Category string
	Kind     string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("render: no %s renderer registered for kind %q", e.Category, e.Kind)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// ErrorMapping splits server-side validation messages into messages attached
// to known fields and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors assigns payload entries to fields of f by name. Keys that do not
// name a field (including "", "form" and "__all__") become form-level
// messages so nothing is lost. Messages are trimmed and de-duplicated.
func MapErrors(f *form.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		name := strings.TrimSpace(key)
		if f != nil && name != "" {
			if _, ok := f.Field(name); ok {
				if mapping.Fields == nil {
					mapping.Fields = make(map[string][]string)
				}
				mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], messages...))
				continue
			}
		}
		mapping.Form = append(mapping.Form, messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
