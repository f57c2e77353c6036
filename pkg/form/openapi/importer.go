package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/sitegear/go-sitegear/pkg/condition"
	"github.com/sitegear/go-sitegear/pkg/form"
)

var (
	ErrEmptyDocument     = errors.New("openapi: document payload is empty")
	ErrOperationNotFound = errors.New("openapi: operation not found")
	ErrNoRequestSchema   = errors.New("openapi: operation has no request body schema")
)

// ConditionsExtension is the schema extension holding conditions for the
// element generated from a property, in definition syntax:
//
//	x-sitegear-conditions:
//	  - condition: exact-match
//	    options: {field: country, values: [AU]}
const ConditionsExtension = "x-sitegear-conditions"

// Operation summarises an operation that can be imported.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Option configures an Importer.
type Option func(*Importer)

// WithExternalRefs allows the loader to resolve references to other files.
func WithExternalRefs(allowed bool) Option {
	return func(i *Importer) {
		i.externalRefs = allowed
	}
}

// WithConditionRegistry resolves ConditionsExtension entries through
// registry.
func WithConditionRegistry(registry *condition.Registry) Option {
	return func(i *Importer) {
		if registry != nil {
			i.conditions = registry
		}
	}
}

// WithoutFinalize returns forms that can still be modified.
func WithoutFinalize() Option {
	return func(i *Importer) {
		i.finalize = false
	}
}

// Importer builds forms from OpenAPI 3 request body schemas.
type Importer struct {
	externalRefs bool
	finalize     bool
	conditions   *condition.Registry
}

// NewImporter constructs an importer.
func NewImporter(opts ...Option) *Importer {
	i := &Importer{finalize: true}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	if i.conditions == nil {
		i.conditions = condition.NewRegistry()
	}
	return i
}

// Operations lists the operations of a document sorted by id. Operations
// without an operationId get "<method>:<path>".
func (i *Importer) Operations(ctx context.Context, data []byte) ([]Operation, error) {
	doc, err := i.load(ctx, data)
	if err != nil {
		return nil, err
	}
	var out []Operation
	eachOperation(doc, func(method, path string, _ *openapi3.Operation, id string) {
		out = append(out, Operation{ID: id, Method: method, Path: path})
	})
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// Import builds the form for operationID. The form is named after the
// operation and submits to its path with its method.
func (i *Importer) Import(ctx context.Context, data []byte, operationID string) (*form.Form, error) {
	doc, err := i.load(ctx, data)
	if err != nil {
		return nil, err
	}

	var (
		found  *openapi3.Operation
		method string
		path   string
	)
	eachOperation(doc, func(m, p string, op *openapi3.Operation, id string) {
		if found == nil && id == operationID {
			found, method, path = op, m, p
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(found.RequestBody)
	if schema == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestSchema, operationID)
	}

	f, err := form.New(operationID, form.WithAction(path), form.WithMethod(method))
	if err != nil {
		return nil, err
	}
	elements, err := i.elements(schema, "")
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	if err := f.Add(elements...); err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	if i.finalize {
		if err := f.Finalize(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// LoadFile reads a document from disk and imports operationID.
func LoadFile(ctx context.Context, path, operationID string, opts ...Option) (*form.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return NewImporter(opts...).Import(ctx, data, operationID)
}

func (i *Importer) load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDocument
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

func eachOperation(doc *openapi3.T, fn func(method, path string, op *openapi3.Operation, id string)) {
	if doc == nil || doc.Paths == nil {
		return
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, entry := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"PUT", item.Put},
			{"POST", item.Post},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
		} {
			if entry.op == nil {
				continue
			}
			id := entry.op.OperationID
			if id == "" {
				id = strings.ToLower(entry.method) + ":" + path
			}
			fn(entry.method, path, entry.op, id)
		}
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	mediaTypes := make([]string, 0, len(content))
	for mediaType := range content {
		mediaTypes = append(mediaTypes, mediaType)
	}
	sort.Strings(mediaTypes)
	for _, mediaType := range mediaTypes {
		if mt := content[mediaType]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// elements converts the properties of an object schema, in name order.
func (i *Importer) elements(schema *openapi3.Schema, prefix string) ([]form.Element, error) {
	if schema == nil || len(schema.Properties) == 0 {
		return nil, nil
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []form.Element
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		el, err := i.element(name, prefix+name, ref.Value, required[name])
		if err != nil {
			return nil, err
		}
		if el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

func (i *Importer) element(name, path string, prop *openapi3.Schema, required bool) (form.Element, error) {
	conditions, err := i.schemaConditions(prop)
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", path, err)
	}
	label := prop.Title
	if label == "" {
		label = humanize(name)
	}

	typ := schemaType(prop)
	if typ == "object" {
		children, err := i.elements(prop, path+".")
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, nil
		}
		return form.NewGroup(label, children, form.WithConditions(conditions...))
	}

	fieldType, options := fieldTypeOf(typ, prop)
	if fieldType == "" {
		return nil, nil
	}
	if prop.Description != "" {
		options[form.OptionHelp] = prop.Description
	}
	if prop.Default != nil {
		options[form.OptionDefault] = prop.Default
	}

	var constraints []form.Constraint
	if required {
		constraints = append(constraints, form.Required{})
	}
	if prop.MinLength > 0 || prop.MaxLength != nil {
		length := form.Length{Min: int(prop.MinLength)}
		if prop.MaxLength != nil {
			length.Max = int(*prop.MaxLength)
		}
		constraints = append(constraints, length)
	}
	if prop.Pattern != "" {
		pattern, err := form.NewPattern(prop.Pattern)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", path, err)
		}
		constraints = append(constraints, pattern)
	}
	if choices, ok := options[form.OptionChoices].([]string); ok {
		constraints = append(constraints, form.Choice{Allowed: choices})
	}

	field, err := form.NewField(path, fieldType, form.WithOptions(options), form.WithConstraints(constraints...))
	if err != nil {
		return nil, err
	}
	return form.NewFieldElement(label, field, form.WithConditions(conditions...))
}

// fieldTypeOf maps a schema to a field type. Unsupported schemas map to "".
func fieldTypeOf(typ string, prop *openapi3.Schema) (string, map[string]any) {
	options := make(map[string]any)
	if enum := enumStrings(prop.Enum); len(enum) > 0 {
		options[form.OptionChoices] = enum
		return form.TypeSelect, options
	}
	switch typ {
	case "boolean":
		return form.TypeCheckbox, options
	case "integer", "number":
		return form.TypeNumber, options
	case "string":
		switch strings.ToLower(prop.Format) {
		case "email":
			return form.TypeEmail, options
		case "password":
			return form.TypePassword, options
		case "textarea":
			return form.TypeTextarea, options
		}
		if prop.MaxLength != nil && *prop.MaxLength > 255 {
			return form.TypeTextarea, options
		}
		return form.TypeText, options
	case "array":
		if prop.Items != nil && prop.Items.Value != nil {
			if enum := enumStrings(prop.Items.Value.Enum); len(enum) > 0 {
				options[form.OptionChoices] = enum
				options["multiple"] = true
				return form.TypeSelect, options
			}
		}
	}
	return "", options
}

func (i *Importer) schemaConditions(prop *openapi3.Schema) ([]condition.Condition, error) {
	raw, ok := prop.Extensions[ConditionsExtension]
	if !ok || raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", ConditionsExtension)
	}
	out := make([]condition.Condition, 0, len(entries))
	for idx, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", ConditionsExtension, idx)
		}
		name, _ := m["condition"].(string)
		options, _ := m["options"].(map[string]any)
		c, err := i.conditions.Build(name, condition.Options(options))
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", ConditionsExtension, idx, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func schemaType(s *openapi3.Schema) string {
	if s.Type != nil {
		for _, t := range s.Type.Slice() {
			if t != "null" {
				return t
			}
		}
	}
	if len(s.Properties) > 0 {
		return "object"
	}
	return ""
}

func enumStrings(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// humanize turns "postal_code" or "postalCode" into "Postal code".
func humanize(name string) string {
	var b strings.Builder
	for idx, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
		case idx > 0 && unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return name
	}
	runes := []rune(out)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
