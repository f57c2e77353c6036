package definition_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/sitegear/go-sitegear/pkg/condition"
	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/form/definition"
)

func TestLoadFile_AddressYAML(t *testing.T) {
	t.Parallel()

	f, err := definition.LoadFile(filepath.Join("testdata", "address.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if f.Name() != "address" || f.Action() != "/checkout/address" || f.Method() != "POST" {
		t.Fatalf("unexpected form header: %s %s %s", f.Name(), f.Action(), f.Method())
	}
	if !f.Finalized() {
		t.Fatalf("expected loaded form to be finalized")
	}

	var names []string
	for _, field := range f.Fields() {
		names = append(names, field.Name())
	}
	if diff := cmp.Diff([]string{"country", "state", "postcode", "captcha"}, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	captcha, ok := f.Field("captcha")
	if !ok {
		t.Fatalf("captcha field missing")
	}
	if _, isCaptcha := captcha.(*form.CaptchaField); !isCaptcha {
		t.Fatalf("expected *form.CaptchaField, got %T", captcha)
	}
	if captcha.Kind() != form.KindCaptcha || captcha.Type() != form.TypeText {
		t.Fatalf("captcha kind/type = %s/%s", captcha.Kind(), captcha.Type())
	}

	if diff := cmp.Diff(map[string]any{"country": "AU"}, f.Defaults()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	active := func(values map[string]any) []string {
		var out []string
		for _, field := range f.ActiveFields(values) {
			out = append(out, field.Name())
		}
		return out
	}
	if diff := cmp.Diff([]string{"country", "state", "postcode", "captcha"}, active(map[string]any{"country": "AU"})); diff != "" {
		t.Fatalf("AU active fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"country", "postcode", "captcha"}, active(map[string]any{"country": "NZ"})); diff != "" {
		t.Fatalf("NZ active fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"country", "captcha"}, active(map[string]any{"country": "US"})); diff != "" {
		t.Fatalf("US active fields mismatch (-want +got):\n%s", diff)
	}

	errs := f.Validate(map[string]any{"country": "AU", "postcode": "abc"})
	if _, ok := errs["postcode"]; !ok {
		t.Fatalf("expected postcode pattern failure, got %v", errs)
	}
	if errs := f.Validate(map[string]any{"country": "US"}); errs != nil {
		t.Fatalf("postcode is hidden for US and must not be validated: %v", errs)
	}
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "contact.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := definition.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	message, ok := f.Field("message")
	if !ok {
		t.Fatalf("message field missing")
	}
	if got := message.Validate("too short"); len(got) != 1 {
		t.Fatalf("expected one length error, got %v", got)
	}

	age := func(values map[string]any) bool {
		for _, field := range f.ActiveFields(values) {
			if field.Name() == "age" {
				return true
			}
		}
		return false
	}
	if age(map[string]any{}) {
		t.Fatalf("age should be hidden until email is entered")
	}
	if !age(map[string]any{"email": "a@example.com"}) {
		t.Fatalf("age should show once email is entered")
	}
}

func TestParse_JSONAndYAMLAgree(t *testing.T) {
	t.Parallel()

	const yamlDef = `
name: tiers
elements:
  - field: {name: tier, type: number}
  - field: {name: perks, type: text}
    conditions:
      - {condition: exact-match, options: {field: tier, values: [1, 2]}}
`
	const jsonDef = `{
  "name": "tiers",
  "elements": [
    {"field": {"name": "tier", "type": "number"}},
    {"field": {"name": "perks", "type": "text"},
     "conditions": [{"condition": "exact-match", "options": {"field": "tier", "values": [1, 2]}}]}
  ]
}`

	conditionOptions := func(data string) []condition.Options {
		t.Helper()
		f, err := definition.Parse([]byte(data))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		var out []condition.Options
		for _, el := range f.Elements() {
			for _, c := range el.Conditions() {
				out = append(out, c.Options())
			}
		}
		return out
	}

	fromYAML, fromJSON := conditionOptions(yamlDef), conditionOptions(jsonDef)
	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Fatalf("condition options differ by format (-yaml +json):\n%s", diff)
	}

	f, err := definition.Parse([]byte(jsonDef))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	active := func(values map[string]any) int { return len(f.ActiveFields(values)) }
	if got := active(map[string]any{"tier": 1}); got != 2 {
		t.Fatalf("int tier: active fields = %d, want 2", got)
	}
	if got := active(map[string]any{"tier": 3}); got != 1 {
		t.Fatalf("other tier: active fields = %d, want 1", got)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		file     string
		wantPath string
		wantErr  error
	}{
		{
			name:     "unknown condition",
			file:     "unknown_condition.yaml",
			wantPath: "elements[0].children[0].conditions[0]",
			wantErr:  condition.ErrUnknownCondition,
		},
		{
			name:     "missing option",
			file:     "missing_option.yaml",
			wantPath: "elements[0].conditions[0]",
			wantErr:  condition.ErrMissingOption,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := definition.LoadFile(filepath.Join("testdata", "invalid", tc.file))
			if !errors.Is(err, definition.ErrInvalidDefinition) {
				t.Fatalf("expected ErrInvalidDefinition, got %v", err)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v in chain, got %v", tc.wantErr, err)
			}
			var defErr *definition.Error
			if !errors.As(err, &defErr) || defErr.Path != tc.wantPath {
				t.Fatalf("expected path %q, got %#v", tc.wantPath, err)
			}
		})
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "name: [unterminated"} {
		if _, err := definition.Parse([]byte(input)); !errors.Is(err, definition.ErrInvalidDefinition) {
			t.Fatalf("input %q: expected ErrInvalidDefinition, got %v", input, err)
		}
	}

	_, err := definition.Parse([]byte("name: x\nelements:\n  - kind: widget\n"))
	if !errors.Is(err, definition.ErrInvalidDefinition) {
		t.Fatalf("unknown kind: expected ErrInvalidDefinition, got %v", err)
	}

	_, err = definition.Parse([]byte("name: x\nelements:\n  - field: {name: a, type: text}\n  - field: {name: a, type: text}\n"))
	if !errors.Is(err, form.ErrDuplicateField) {
		t.Fatalf("duplicate field: expected ErrDuplicateField, got %v", err)
	}
}

func TestParse_CustomConditionAndFieldType(t *testing.T) {
	t.Parallel()

	registry := condition.NewRegistry()
	registry.MustRegister("weekday", func(condition.Options) (condition.Condition, error) {
		return condition.Func{Label: "weekday", Fn: func(values map[string]any) bool {
			return values["day"] != "sat" && values["day"] != "sun"
		}}, nil
	})

	doc := definition.Document{
		Name: "booking",
		Elements: []definition.Element{
			{Field: &definition.Field{Name: "day", Type: "text"}},
			{
				Field:      &definition.Field{Name: "slot", Type: "time"},
				Conditions: []definition.Condition{{Condition: "weekday"}},
			},
		},
	}

	var built []string
	f, err := definition.Build(doc,
		definition.WithConditionRegistry(registry),
		definition.WithFieldType("time", func(name string, opts ...form.FieldOption) (form.Field, error) {
			built = append(built, name)
			return form.NewField(name, "time", opts...)
		}),
		definition.WithoutFinalize(),
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.Finalized() {
		t.Fatalf("WithoutFinalize should leave the form open")
	}
	if diff := cmp.Diff([]string{"slot"}, built); diff != "" {
		t.Fatalf("custom constructor calls mismatch (-want +got):\n%s", diff)
	}
	if got := len(f.ActiveFields(map[string]any{"day": "sun"})); got != 1 {
		t.Fatalf("expected slot hidden on sunday, got %d active fields", got)
	}
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	address, err := os.ReadFile(filepath.Join("testdata", "address.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	contact, err := os.ReadFile(filepath.Join("testdata", "contact.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	fsys := fstest.MapFS{
		"forms/address.yaml": {Data: address},
		"forms/contact.json": {Data: contact},
		"forms/notes.txt":    {Data: []byte("ignored")},
	}
	forms, err := definition.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if diff := cmp.Diff([]string{"address", "contact"}, definition.Names(forms)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fsys["forms/copy.yml"] = &fstest.MapFile{Data: address}
	if _, err := definition.LoadFS(fsys); err == nil {
		t.Fatalf("expected duplicate form name error")
	}
}
