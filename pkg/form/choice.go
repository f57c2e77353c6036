package form

import (
	"fmt"
	"sort"
)

// ChoiceOption is one option of a select or radio field.
type ChoiceOption struct {
	Value string
	Label string
}

// ChoicesOf reads the "choices" option. It accepts a list of scalars, a list
// of {value, label} maps, or a value-to-label map (sorted by value).
func ChoicesOf(field Field) []ChoiceOption {
	if field == nil {
		return nil
	}
	raw, ok := field.Option(OptionChoices)
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		out := make([]ChoiceOption, 0, len(v))
		for _, s := range v {
			out = append(out, ChoiceOption{Value: s, Label: s})
		}
		return out
	case []any:
		out := make([]ChoiceOption, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				value := scalarString(m["value"])
				label := scalarString(m["label"])
				if label == "" {
					label = value
				}
				out = append(out, ChoiceOption{Value: value, Label: label})
				continue
			}
			s := scalarString(item)
			out = append(out, ChoiceOption{Value: s, Label: s})
		}
		return out
	case map[string]any:
		out := make([]ChoiceOption, 0, len(v))
		for key, label := range v {
			out = append(out, ChoiceOption{Value: key, Label: scalarString(label)})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
		return out
	case map[string]string:
		out := make([]ChoiceOption, 0, len(v))
		for key, label := range v {
			out = append(out, ChoiceOption{Value: key, Label: label})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
		return out
	default:
		return nil
	}
}

// ChoiceValues returns just the values of ChoicesOf(field).
func ChoiceValues(field Field) []string {
	choices := ChoicesOf(field)
	if len(choices) == 0 {
		return nil
	}
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Value
	}
	return out
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
