package definition

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sitegear/go-sitegear/pkg/condition"
	"github.com/sitegear/go-sitegear/pkg/form"
)

// FieldConstructor builds a field for a definition type.
type FieldConstructor func(name string, opts ...form.FieldOption) (form.Field, error)

// Option configures how definitions are turned into forms.
type Option func(*config)

type config struct {
	conditions *condition.Registry
	fieldTypes map[string]FieldConstructor
	finalize   bool
	source     string
}

// WithConditionRegistry resolves condition names through registry instead of
// a registry holding only the built-in variants.
func WithConditionRegistry(registry *condition.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.conditions = registry
		}
	}
}

// WithFieldType builds fields of type typ with ctor. Types without a
// constructor become plain form.BaseField values.
func WithFieldType(typ string, ctor FieldConstructor) Option {
	return func(cfg *config) {
		typ = strings.ToLower(strings.TrimSpace(typ))
		if typ != "" && ctor != nil {
			cfg.fieldTypes[typ] = ctor
		}
	}
}

// WithoutFinalize returns forms that can still be modified.
func WithoutFinalize() Option {
	return func(cfg *config) {
		cfg.finalize = false
	}
}

// WithSource names the input in error messages.
func WithSource(source string) Option {
	return func(cfg *config) {
		cfg.source = source
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		fieldTypes: map[string]FieldConstructor{
			form.KindCaptcha: func(name string, opts ...form.FieldOption) (form.Field, error) {
				return form.NewCaptchaField(name, opts...)
			},
		},
		finalize: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.conditions == nil {
		cfg.conditions = condition.NewRegistry()
	}
	return cfg
}

// Parse decodes a JSON or YAML definition and builds the form.
func Parse(data []byte, opts ...Option) (*form.Form, error) {
	cfg := newConfig(opts)
	doc, err := decode(data, cfg.source)
	if err != nil {
		return nil, err
	}
	return build(doc, cfg)
}

// LoadFile reads and parses a definition file.
func LoadFile(path string, opts ...Option) (*form.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definition: read %s: %w", path, err)
	}
	return Parse(data, append([]Option{WithSource(path)}, opts...)...)
}

// Build turns an already decoded document into a form.
func Build(doc Document, opts ...Option) (*form.Form, error) {
	return build(doc, newConfig(opts))
}

// LoadFS parses every .json, .yaml and .yml file in fsys, keyed by form name.
// Two files declaring the same form name is an error.
func LoadFS(fsys fs.FS, opts ...Option) (map[string]*form.Form, error) {
	forms := make(map[string]*form.Form)
	if fsys == nil {
		return forms, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		f, err := Parse(data, append([]Option{WithSource(path)}, opts...)...)
		if err != nil {
			return err
		}
		if _, exists := forms[f.Name()]; exists {
			return fmt.Errorf("definition: duplicate form %q (file %s)", f.Name(), path)
		}
		forms[f.Name()] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

// Names returns the sorted keys of a LoadFS result.
func Names(forms map[string]*form.Form) []string {
	names := make([]string, 0, len(forms))
	for name := range forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decode(data []byte, source string) (Document, error) {
	var doc Document
	if strings.TrimSpace(string(data)) == "" {
		return Document{}, &Error{Source: source, Path: "$", Err: fmt.Errorf("definition is empty")}
	}
	// JSON is decoded as YAML too so numbers resolve to the same Go types
	// whatever the file format.
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, &Error{Source: source, Path: "$", Err: fmt.Errorf("invalid JSON or YAML: %w", err)}
	}
	return doc, nil
}

func build(doc Document, cfg *config) (*form.Form, error) {
	var formOpts []form.Option
	if doc.Action != "" {
		formOpts = append(formOpts, form.WithAction(doc.Action))
	}
	if doc.Method != "" {
		formOpts = append(formOpts, form.WithMethod(doc.Method))
	}
	f, err := form.New(doc.Name, formOpts...)
	if err != nil {
		return nil, &Error{Source: cfg.source, Path: "name", Err: err}
	}

	for i, raw := range doc.Elements {
		path := fmt.Sprintf("elements[%d]", i)
		el, err := buildElement(raw, path, cfg)
		if err != nil {
			return nil, err
		}
		if err := f.Add(el); err != nil {
			return nil, &Error{Source: cfg.source, Path: path, Err: err}
		}
	}

	if cfg.finalize {
		if err := f.Finalize(); err != nil {
			return nil, &Error{Source: cfg.source, Path: "$", Err: err}
		}
	}
	return f, nil
}

func buildElement(raw Element, path string, cfg *config) (form.Element, error) {
	fail := func(suffix string, err error) error {
		return &Error{Source: cfg.source, Path: path + suffix, Err: err}
	}

	conditions := make([]condition.Condition, 0, len(raw.Conditions))
	for i, c := range raw.Conditions {
		built, err := cfg.conditions.Build(c.Condition, condition.Options(c.Options))
		if err != nil {
			return nil, fail(fmt.Sprintf(".conditions[%d]", i), err)
		}
		conditions = append(conditions, built)
	}
	elOpts := []form.ElementOption{form.WithConditions(conditions...)}

	switch kind := inferKind(raw); kind {
	case form.KindField:
		if raw.Field == nil {
			return nil, fail(".field", fmt.Errorf("field element requires a field"))
		}
		field, err := buildField(*raw.Field, raw.Constraints, path, cfg)
		if err != nil {
			return nil, err
		}
		el, err := form.NewFieldElement(raw.Label, field, elOpts...)
		if err != nil {
			return nil, fail("", err)
		}
		return el, nil

	case form.KindFieldset:
		children := make([]form.Element, 0, len(raw.Children))
		for i, child := range raw.Children {
			el, err := buildElement(child, fmt.Sprintf("%s.children[%d]", path, i), cfg)
			if err != nil {
				return nil, err
			}
			children = append(children, el)
		}
		group, err := form.NewGroup(raw.Label, children, elOpts...)
		if err != nil {
			return nil, fail("", err)
		}
		return group, nil

	case form.KindMarkup:
		return form.NewMarkup(raw.Content, elOpts...), nil

	default:
		return nil, fail(".kind", fmt.Errorf("unknown element kind %q", raw.Kind))
	}
}

func inferKind(raw Element) string {
	if kind := strings.ToLower(strings.TrimSpace(raw.Kind)); kind != "" {
		return kind
	}
	switch {
	case raw.Field != nil:
		return form.KindField
	case len(raw.Children) > 0:
		return form.KindFieldset
	case raw.Content != "":
		return form.KindMarkup
	}
	return ""
}

func buildField(raw Field, constraints []Constraint, path string, cfg *config) (form.Field, error) {
	built := make([]form.Constraint, 0, len(constraints))
	for i, c := range constraints {
		constraint, err := form.NewConstraint(c.Type, c.Options)
		if err != nil {
			return nil, &Error{Source: cfg.source, Path: fmt.Sprintf("%s.constraints[%d]", path, i), Err: err}
		}
		built = append(built, constraint)
	}

	fieldOpts := []form.FieldOption{
		form.WithOptions(raw.Options),
		form.WithConstraints(built...),
	}

	typ := strings.ToLower(strings.TrimSpace(raw.Type))
	if ctor, ok := cfg.fieldTypes[typ]; ok {
		field, err := ctor(raw.Name, fieldOpts...)
		if err != nil {
			return nil, &Error{Source: cfg.source, Path: path + ".field", Err: err}
		}
		return field, nil
	}
	field, err := form.NewField(raw.Name, typ, fieldOpts...)
	if err != nil {
		return nil, &Error{Source: cfg.source, Path: path + ".field", Err: err}
	}
	return field, nil
}
