package render

import (
	"context"
	"io"

	"github.com/sitegear/go-sitegear/pkg/form"
)

// ElementRenderer produces the output for one element. Container renderers
// recurse through scope.RenderChildren.
type ElementRenderer interface {
	RenderElement(ctx context.Context, w io.Writer, el form.Element, scope *Scope) error
}

// ElementRendererFunc adapts a function into an ElementRenderer.
type ElementRendererFunc func(ctx context.Context, w io.Writer, el form.Element, scope *Scope) error

func (fn ElementRendererFunc) RenderElement(ctx context.Context, w io.Writer, el form.Element, scope *Scope) error {
	return fn(ctx, w, el, scope)
}

// FieldRenderer produces the control for one field.
type FieldRenderer interface {
	RenderField(ctx context.Context, w io.Writer, field form.Field, scope *Scope) error
}

// FieldRendererFunc adapts a function into a FieldRenderer.
type FieldRendererFunc func(ctx context.Context, w io.Writer, field form.Field, scope *Scope) error

func (fn FieldRendererFunc) RenderField(ctx context.Context, w io.Writer, field form.Field, scope *Scope) error {
	return fn(ctx, w, field, scope)
}

// Renderer converts a whole form into a byte representation (HTML, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options Options) ([]byte, error)
}
