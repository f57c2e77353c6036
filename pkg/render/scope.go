package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/sitegear/go-sitegear/pkg/form"
)

// Scope is the per-render state handed to every renderer. It is built once
// per pass and never mutated by renderers; nested calls get a copy with the
// depth advanced.
type Scope struct {
	factory    *Factory
	form       *form.Form
	values     map[string]any
	fieldErrs  map[string][]string
	formErrs   []string
	hidden     []HiddenField
	policy     Policy
	logger     *slog.Logger
	inactive   bool
	depth      int
	suppressed bool
}

// NewScope prepares a render pass of f through factory.
func NewScope(factory *Factory, f *form.Form, opts Options) (*Scope, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if f == nil {
		return nil, errors.New("render: form is nil")
	}

	values := opts.Values
	if values == nil {
		values = f.Defaults()
	} else {
		values = maps.Clone(values)
	}
	mapping := MapErrors(f, opts.Errors)

	return &Scope{
		factory:   factory,
		form:      f,
		values:    values,
		fieldErrs: mapping.Fields,
		formErrs:  mapping.Form,
		hidden:    NormalizeHidden(opts.Hidden),
		policy:    opts.Policy,
		logger:    opts.logger(),
		inactive:  opts.IncludeInactive,
	}, nil
}

func (s *Scope) Form() *form.Form     { return s.form }
func (s *Scope) Factory() *Factory    { return s.factory }
func (s *Scope) Policy() Policy       { return s.policy }
func (s *Scope) Logger() *slog.Logger { return s.logger }

// Depth is the nesting level of the element currently rendering; root
// elements are at depth 0.
func (s *Scope) Depth() int { return s.depth }

// Values returns the value mapping used for pre-population and conditions.
func (s *Scope) Values() map[string]any { return s.values }

// Value returns the current value of a named field.
func (s *Scope) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Errors returns the feedback messages attached to a field.
func (s *Scope) Errors(name string) []string { return s.fieldErrs[name] }

// FormErrors returns feedback messages not tied to any field.
func (s *Scope) FormErrors() []string { return s.formErrs }

// Hidden returns the normalised hidden fields.
func (s *Scope) Hidden() []HiddenField { return s.hidden }

// Suppressed reports whether the element being rendered, or one of its
// ancestors, is inactive. It is only ever true when Options.IncludeInactive
// is set.
func (s *Scope) Suppressed() bool { return s.suppressed }

// RenderElements renders the root elements of the form in order.
func (s *Scope) RenderElements(ctx context.Context, w io.Writer) error {
	for _, el := range s.form.Elements() {
		if err := s.RenderElement(ctx, w, el); err != nil {
			return err
		}
	}
	return nil
}

// RenderChildren renders the children of el one level deeper.
func (s *Scope) RenderChildren(ctx context.Context, w io.Writer, el form.Element) error {
	if el == nil {
		return nil
	}
	child := s.nested(s.suppressed)
	for _, c := range el.Children() {
		if err := child.RenderElement(ctx, w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderElement resolves and invokes the renderer for el. Inactive elements
// render nothing unless Options.IncludeInactive is set.
func (s *Scope) RenderElement(ctx context.Context, w io.Writer, el form.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if el == nil {
		return nil
	}

	suppressed := s.suppressed || !el.Active(s.values)
	if suppressed && !s.inactive {
		return nil
	}

	renderer, err := s.factory.ElementRenderer(el)
	if err != nil {
		return s.unsupported(err, "label", el.Label())
	}

	scope := *s
	scope.suppressed = suppressed
	return renderer.RenderElement(ctx, w, el, &scope)
}

// RenderField resolves and invokes the renderer for field.
func (s *Scope) RenderField(ctx context.Context, w io.Writer, field form.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	renderer, err := s.factory.FieldRenderer(field)
	if err != nil {
		name := ""
		if field != nil {
			name = field.Name()
		}
		return s.unsupported(err, "field", name)
	}
	return renderer.RenderField(ctx, w, field, s)
}

func (s *Scope) nested(suppressed bool) *Scope {
	child := *s
	child.depth++
	child.suppressed = suppressed
	return &child
}

func (s *Scope) unsupported(err error, attrKey, attrValue string) error {
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) || s.policy == AbortOnUnsupported {
		return err
	}
	s.logger.Warn("render: skipping unsupported node",
		slog.String("category", unsupported.Category),
		slog.String("kind", unsupported.Kind),
		slog.String(attrKey, attrValue),
	)
	return nil
}
