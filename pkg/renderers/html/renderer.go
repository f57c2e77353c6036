package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
)

// Option configures the HTML renderer.
type Option func(*config)

type config struct {
	templates    fs.FS
	engine       *Engine
	factory      *render.Factory
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	logger       *slog.Logger
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithEngine injects a preconfigured template engine.
func WithEngine(engine *Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithFactory renders through factory instead of one populated by Register.
// Use it to add or override element kinds.
func WithFactory(factory *render.Factory) Option {
	return func(cfg *config) {
		if factory != nil {
			cfg.factory = factory
		}
	}
}

// WithTheme selects a go-theme manifest whose tokens become CSS custom
// properties on the form.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// WithLogger sets the logger used when the render options carry none.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer renders a whole form as an HTML <form> fragment.
type Renderer struct {
	engine  *Engine
	factory *render.Factory
	theme   themeContext
	logger  *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer. The theme, if any, is resolved once here.
func New(options ...Option) (*Renderer, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine := cfg.engine
	if engine == nil {
		var engineOpts []EngineOption
		if cfg.templates != nil {
			engineOpts = append(engineOpts, WithTemplateFS(cfg.templates))
		}
		var err error
		engine, err = NewEngine(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html: configure template engine: %w", err)
		}
	}

	factory := cfg.factory
	if factory == nil {
		factory = render.NewFactory()
		if err := Register(factory, engine); err != nil {
			return nil, fmt.Errorf("html: register renderers: %w", err)
		}
	}

	return &Renderer{
		engine:  engine,
		factory: factory,
		theme:   resolveTheme(cfg.selector, cfg.themeName, cfg.themeVariant, cfg.logger),
		logger:  cfg.logger,
	}, nil
}

func (r *Renderer) Name() string { return "html" }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Factory exposes the factory used for element dispatch.
func (r *Renderer) Factory() *render.Factory { return r.factory }

// Render produces the <form> markup for f. Methods other than GET and POST
// are submitted as POST with a "_method" hidden field.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.Options) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("html: form is nil")
	}
	if options.Logger == nil {
		options.Logger = r.logger
	}
	method, override := render.BrowserMethod(f.Method())
	if override {
		options.Hidden = append(slices.Clone(options.Hidden), render.MethodOverride(f.Method()))
	}

	scope, err := render.NewScope(r.factory, f, options)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := scope.RenderElements(ctx, &body); err != nil {
		return nil, fmt.Errorf("html: render form %q: %w", f.Name(), err)
	}

	var out bytes.Buffer
	err = r.engine.Execute(&out, "form", pongo2.Context{
		"id":      controlID("", f.Name()),
		"name":    f.Name(),
		"action":  f.Action(),
		"method":  method,
		"hidden":  scope.Hidden(),
		"errors":  scope.FormErrors(),
		"body":    body.String(),
		"theme":   r.theme.Name,
		"variant": r.theme.Variant,
		"style":   r.theme.Style,
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
