package render

import (
	"context"
	"io"

	"github.com/sitegear/go-sitegear/pkg/form"
)

// Tree renders every active root element of f through factory. Output of
// nodes rendered before an error is left in w.
func Tree(ctx context.Context, w io.Writer, factory *Factory, f *form.Form, opts Options) error {
	scope, err := NewScope(factory, f, opts)
	if err != nil {
		return err
	}
	return scope.RenderElements(ctx, w)
}
