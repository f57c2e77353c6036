package html

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	templates fs.FS
	extension string
	globals   map[string]any
}

// WithTemplateFS loads templates from files instead of the embedded bundle.
// Templates missing from files are not looked up elsewhere.
func WithTemplateFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithExtension overrides the template file extension (default ".tmpl").
func WithExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globals[key] = value
			}
		}
	}
}

// Engine executes named pongo2 templates. Parsed templates are cached per
// path; the engine is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
}

// NewEngine builds an engine over the embedded template bundle unless
// WithTemplateFS is given.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{
		templates: TemplatesFS(),
		extension: ".tmpl",
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("html: template filesystem is nil")
	}

	set := pongo2.NewSet("sitegear-html", pongo2.NewFSLoader(cfg.templates))
	if len(cfg.globals) > 0 {
		set.Globals = make(pongo2.Context, len(cfg.globals))
		for key, value := range cfg.globals {
			set.Globals[key] = value
		}
	}

	return &Engine{
		set:       set,
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
	}, nil
}

// Execute renders template name (extension optional) with data into w.
func (e *Engine) Execute(w io.Writer, name string, data pongo2.Context) error {
	if e == nil || e.set == nil {
		return errors.New("html: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.template(path)
	if err != nil {
		return err
	}
	if data == nil {
		data = pongo2.Context{}
	}

	e.mu.RLock()
	err = tmpl.ExecuteWriter(data, w)
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("html: execute template %q: %w", path, err)
	}
	return nil
}

// RegisterFilter exposes fn to templates as a pongo2 filter. Filters are
// process-wide in pongo2, so registering a name twice fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("html: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("html: filter %q already exists", name)
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	return pongo2.RegisterFilter(name, filter)
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}
