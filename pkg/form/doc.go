// Package form defines the form model: fields, the element tree that lays
// them out, and the Form root that owns the tree.
//
// A form is assembled single-threaded (in code, or by the definition and
// openapi subpackages), then Finalize freezes every element and field. After
// that, mutators return an *ImmutableStateError and the form may be rendered
// concurrently.
//
// Elements gate themselves through conditions from the condition package.
// Conditions reference fields by name only; they are evaluated against a
// plain value mapping (submitted values or Form.Defaults) and never hold a
// pointer to the field they inspect.
//
// Field kinds differ from field types where a specialised field needs its own
// renderer: CaptchaField submits text (Type "text") but reports Kind
// "captcha", and its type can never be changed.
package form
