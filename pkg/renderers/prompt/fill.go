package prompt

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
)

// Option configures Fill.
type Option func(*filler)

// WithDriver sets the terminal driver. Without it Fill returns ErrNoDriver.
func WithDriver(d Driver) Option {
	return func(f *filler) { f.driver = d }
}

// WithPrompters replaces the default prompter registry.
func WithPrompters(r *render.Registry[Prompter]) Option {
	return func(f *filler) {
		if r != nil {
			f.prompters = r
		}
	}
}

// WithLogger sets the logger used for skip warnings.
func WithLogger(l *slog.Logger) Option {
	return func(f *filler) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithInitialValues seeds answers. They take precedence over field defaults
// and are offered as the prompt default.
func WithInitialValues(values map[string]any) Option {
	return func(f *filler) { f.initial = values }
}

// WithPolicy controls what happens to fields without a prompter.
func WithPolicy(p render.Policy) Option {
	return func(f *filler) { f.policy = p }
}

type filler struct {
	driver    Driver
	prompters *render.Registry[Prompter]
	logger    *slog.Logger
	initial   map[string]any
	policy    render.Policy

	values map[string]any
}

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

func plainText(markup string) string {
	stripOnce.Do(func() { stripPolicy = bluemonday.StrictPolicy() })
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(markup)))
}

// Fill asks for every active field of f in document order and returns the
// collected values. Conditions are evaluated against the answers given so
// far, so answering one field can reveal or hide the ones after it. The
// result only holds values of fields that are active for the final answers.
func Fill(ctx context.Context, f *form.Form, opts ...Option) (map[string]any, error) {
	if f == nil {
		return nil, errors.New("prompt: form is nil")
	}
	fl := &filler{
		prompters: DefaultPrompters(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(fl)
		}
	}
	if fl.driver == nil {
		return nil, ErrNoDriver
	}

	fl.values = f.Defaults()
	maps.Copy(fl.values, fl.initial)

	if err := fl.walk(ctx, f.Elements()); err != nil {
		return nil, err
	}

	result := make(map[string]any)
	for _, field := range f.ActiveFields(fl.values) {
		if v, ok := fl.values[field.Name()]; ok {
			result[field.Name()] = v
		}
	}
	return result, nil
}

func (fl *filler) walk(ctx context.Context, elements []form.Element) error {
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !el.Active(fl.values) {
			continue
		}
		switch node := el.(type) {
		case *form.FieldElement:
			if err := fl.ask(ctx, node); err != nil {
				return err
			}
		case *form.Markup:
			if text := plainText(node.Content()); text != "" {
				if err := fl.driver.Info(ctx, text); err != nil {
					return err
				}
			}
		default:
			if label := strings.TrimSpace(el.Label()); label != "" {
				if err := fl.driver.Info(ctx, "== "+label+" =="); err != nil {
					return err
				}
			}
			if err := fl.walk(ctx, el.Children()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (fl *filler) ask(ctx context.Context, el *form.FieldElement) error {
	field := el.Field()
	prompter, err := fl.prompters.Resolve(field.Kind())
	if err != nil {
		var unsupported *render.UnsupportedTypeError
		if errors.As(err, &unsupported) && fl.policy == render.SkipUnsupported {
			fl.logger.Warn("prompt: skipping unsupported field",
				slog.String("kind", unsupported.Kind),
				slog.String("field", field.Name()),
			)
			return nil
		}
		return err
	}

	label := strings.TrimSpace(el.Label())
	if label == "" {
		label = field.Name()
	}
	answer, err := prompter.Prompt(ctx, fl.driver, Question{
		Field:   field,
		Label:   label,
		Current: fl.values[field.Name()],
	})
	if err != nil {
		if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("prompt: field %q: %w", field.Name(), err)
	}
	if answer == nil {
		delete(fl.values, field.Name())
		return nil
	}
	fl.values[field.Name()] = answer
	return nil
}
