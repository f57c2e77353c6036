package form

// KindCaptcha is the renderer kind reported by CaptchaField.
const KindCaptcha = "captcha"

// CaptchaField is a text field whose type is fixed. It delegates everything
// except type handling to an embedded BaseField.
type CaptchaField struct {
	*BaseField
}

var _ Field = (*CaptchaField)(nil)

// NewCaptchaField constructs a captcha field. The submitted value is text, so
// Type always reports "text"; Kind reports "captcha" so a dedicated renderer
// can be resolved.
func NewCaptchaField(name string, opts ...FieldOption) (*CaptchaField, error) {
	base, err := NewField(name, TypeText, opts...)
	if err != nil {
		return nil, err
	}
	return &CaptchaField{BaseField: base}, nil
}

func (f *CaptchaField) Kind() string { return KindCaptcha }

func (f *CaptchaField) Type() string { return TypeText }

// SetType always fails, whatever the argument and whether or not the form has
// been finalized.
func (f *CaptchaField) SetType(string) error {
	return &InvalidOperationError{
		Field:     f.Name(),
		Operation: "set type",
		Reason:    "captcha fields always have type \"text\"",
	}
}
