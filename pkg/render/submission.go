package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible elements.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken carries an anti-forgery token under the backend's input name
// (for example "_csrf").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MethodOverride emits the conventional "_method" input used when a form
// declares a verb browsers cannot submit natively.
func MethodOverride(method string) HiddenField {
	return Hidden("_method", strings.ToUpper(strings.TrimSpace(method)))
}

// NormalizeHidden drops unnamed fields, keeps the last value for repeated
// names and sorts by name so output is deterministic.
func NormalizeHidden(fields []HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		byName[name] = field.Value
	}
	if len(byName) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BrowserMethod maps a form method to what an HTML form can submit and
// reports whether a MethodOverride field is needed.
func BrowserMethod(method string) (string, bool) {
	switch upper := strings.ToUpper(strings.TrimSpace(method)); upper {
	case "", "POST":
		return "post", false
	case "GET":
		return "get", false
	default:
		return "post", true
	}
}
