// Package sitegear is the quick entry point to the form system: parse a
// definition (or import an OpenAPI operation) and render it as HTML in one
// call. The packages under pkg/ expose the individual pieces.
package sitegear

import (
	"context"
	"io/fs"

	"github.com/sitegear/go-sitegear/pkg/form/definition"
	"github.com/sitegear/go-sitegear/pkg/form/openapi"
	"github.com/sitegear/go-sitegear/pkg/render"
	"github.com/sitegear/go-sitegear/pkg/renderers/html"
)

// ConditionsRuntime is the file name of the browser runtime in
// RuntimeAssetsFS.
const ConditionsRuntime = "sitegear-conditions.js"

// RenderOptions carries per-request values, errors and hidden fields.
type RenderOptions = render.Options

// RenderDefinition parses a JSON or YAML form definition and renders it.
func RenderDefinition(ctx context.Context, data []byte, opts RenderOptions, htmlOpts ...html.Option) ([]byte, error) {
	f, err := definition.Parse(data)
	if err != nil {
		return nil, err
	}
	renderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f, opts)
}

// RenderOperation imports the request body of operationID from an OpenAPI
// document and renders it.
func RenderOperation(ctx context.Context, document []byte, operationID string, opts RenderOptions, htmlOpts ...html.Option) ([]byte, error) {
	f, err := openapi.NewImporter().Import(ctx, document, operationID)
	if err != nil {
		return nil, err
	}
	renderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f, opts)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// and override them through html.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
