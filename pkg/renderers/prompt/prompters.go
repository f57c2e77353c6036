package prompt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
)

// Question is what a Prompter needs to ask for one field.
type Question struct {
	Field form.Field
	// Label is the element label, falling back to the field name.
	Label string
	// Current is the value collected so far or the field default.
	Current any
}

// Prompter asks for one field's value through a Driver. A nil answer means
// "no value".
type Prompter interface {
	Prompt(ctx context.Context, driver Driver, q Question) (any, error)
}

// PrompterFunc adapts a function into a Prompter.
type PrompterFunc func(ctx context.Context, driver Driver, q Question) (any, error)

func (fn PrompterFunc) Prompt(ctx context.Context, driver Driver, q Question) (any, error) {
	return fn(ctx, driver, q)
}

// CategoryPrompt names the prompter registry in errors and logs.
const CategoryPrompt = "prompt"

// DefaultPrompters returns a registry with prompters for the standard field
// kinds. Captcha fields have no terminal representation and stay
// unregistered.
func DefaultPrompters() *render.Registry[Prompter] {
	r := render.NewRegistry[Prompter](CategoryPrompt)
	r.MustRegister(form.TypeText, constant(typed(ControlLine, asString)))
	r.MustRegister(form.TypeEmail, constant(typed(ControlLine, asString)))
	r.MustRegister(form.TypeNumber, constant(typed(ControlLine, asNumber)))
	r.MustRegister(form.TypePassword, constant(typed(ControlSecret, asString)))
	r.MustRegister(form.TypeTextarea, constant(typed(ControlText, asString)))
	r.MustRegister(form.TypeCheckbox, constant(PrompterFunc(promptConfirm)))
	r.MustRegister(form.TypeSelect, constant(PrompterFunc(promptSelect)))
	r.MustRegister(form.TypeRadio, constant(PrompterFunc(promptSelect)))
	r.MustRegister(form.TypeHidden, constant(PrompterFunc(keepCurrent)))
	return r
}

func constant(p Prompter) render.Constructor[Prompter] {
	return func() Prompter { return p }
}

// Prompt derives the base prompt for q: message, help and field name.
func (q Question) Prompt(c Control) Prompt {
	return Prompt{
		Control: c,
		Field:   q.Field.Name(),
		Message: q.Label,
		Help:    form.StringOption(q.Field, form.OptionHelp),
	}
}

// typed asks for free text and converts it with convert. The field's
// constraints validate the converted value before the answer is accepted.
func typed(c Control, convert func(string) (any, error)) Prompter {
	return PrompterFunc(func(ctx context.Context, d Driver, q Question) (any, error) {
		p := q.Prompt(c)
		if c != ControlSecret {
			p.Default = currentString(q.Current)
		}
		p.Validate = func(raw string) error {
			value, err := convert(raw)
			if err != nil {
				return err
			}
			return errors.Join(q.Field.Validate(value)...)
		}
		answer, err := d.Ask(ctx, p)
		if err != nil {
			return nil, err
		}
		return convert(answer.Text)
	})
}

func asString(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return raw, nil
}

func asNumber(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return f, nil
}

func currentString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func promptConfirm(ctx context.Context, d Driver, q Question) (any, error) {
	p := q.Prompt(ControlConfirm)
	p.Yes, _ = q.Current.(bool)
	answer, err := d.Ask(ctx, p)
	if err != nil {
		return nil, err
	}
	return answer.Yes, nil
}

// promptSelect offers choice labels and answers with choice values: a string,
// or a []string when the field allows multiple selections.
func promptSelect(ctx context.Context, d Driver, q Question) (any, error) {
	choices := form.ChoicesOf(q.Field)
	if len(choices) == 0 {
		return nil, fmt.Errorf("prompt: field %q has no choices", q.Field.Name())
	}
	multiple, _ := q.Field.Option("multiple")

	p := q.Prompt(ControlSelect)
	if multiple == true {
		p.Control = ControlMultiSelect
	}
	current := currentStrings(q.Current)
	for i, c := range choices {
		p.Choices = append(p.Choices, c.Label)
		if slices.Contains(current, c.Value) {
			p.Selected = append(p.Selected, i)
		}
	}

	answer, err := d.Ask(ctx, p)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(answer.Picked))
	for _, idx := range answer.Picked {
		if idx < 0 || idx >= len(choices) {
			return nil, fmt.Errorf("prompt: field %q: selection out of range", q.Field.Name())
		}
		values = append(values, choices[idx].Value)
	}
	if p.Control == ControlMultiSelect {
		return values, nil
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("prompt: field %q: expected one selection, got %d", q.Field.Name(), len(values))
	}
	return values[0], nil
}

func keepCurrent(_ context.Context, _ Driver, q Question) (any, error) {
	return q.Current, nil
}

func currentStrings(v any) []string {
	switch value := v.(type) {
	case nil:
		return nil
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, currentString(item))
		}
		return out
	default:
		return []string{currentString(value)}
	}
}
