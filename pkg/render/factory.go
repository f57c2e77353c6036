package render

import "github.com/sitegear/go-sitegear/pkg/form"

// Registry categories used by Factory.
const (
	CategoryElement = "element"
	CategoryField   = "field"
)

// Factory maps elements and fields to their renderers by runtime kind. New
// kinds plug in by registering a constructor; the factory itself never
// enumerates kinds.
type Factory struct {
	elements *Registry[ElementRenderer]
	fields   *Registry[FieldRenderer]
}

// NewFactory returns a factory with empty registries.
func NewFactory() *Factory {
	return &Factory{
		elements: NewRegistry[ElementRenderer](CategoryElement),
		fields:   NewRegistry[FieldRenderer](CategoryField),
	}
}

func (f *Factory) RegisterElement(kind string, ctor Constructor[ElementRenderer]) error {
	return f.elements.Register(kind, ctor)
}

func (f *Factory) RegisterField(kind string, ctor Constructor[FieldRenderer]) error {
	return f.fields.Register(kind, ctor)
}

func (f *Factory) ReplaceElement(kind string, ctor Constructor[ElementRenderer]) error {
	return f.elements.Replace(kind, ctor)
}

func (f *Factory) ReplaceField(kind string, ctor Constructor[FieldRenderer]) error {
	return f.fields.Replace(kind, ctor)
}

func (f *Factory) DeregisterElement(kind string) bool { return f.elements.Deregister(kind) }

func (f *Factory) DeregisterField(kind string) bool { return f.fields.Deregister(kind) }

// ElementRenderer resolves the renderer for el.Kind().
func (f *Factory) ElementRenderer(el form.Element) (ElementRenderer, error) {
	if el == nil {
		return nil, form.ErrNilElement
	}
	return f.elements.Resolve(el.Kind())
}

// FieldRenderer resolves the renderer for field.Kind().
func (f *Factory) FieldRenderer(field form.Field) (FieldRenderer, error) {
	if field == nil {
		return nil, &UnsupportedTypeError{Category: CategoryField, Kind: ""}
	}
	return f.fields.Resolve(field.Kind())
}

// ElementKinds lists registered element kinds.
func (f *Factory) ElementKinds() []string { return f.elements.Kinds() }

// FieldKinds lists registered field kinds.
func (f *Factory) FieldKinds() []string { return f.fields.Kinds() }
