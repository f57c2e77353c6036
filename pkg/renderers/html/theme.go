package html

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeContext is what a theme selection contributes to the <form> tag.
type themeContext struct {
	Name    string
	Variant string
	CSSVars map[string]string
	Style   string
}

// resolveTheme selects a theme and derives CSS custom properties from its
// tokens, variant tokens taking precedence. A failed selection is logged and
// yields an empty context so the form renders unthemed.
func resolveTheme(selector theme.ThemeSelector, name, variant string, logger *slog.Logger) themeContext {
	if selector == nil {
		return themeContext{}
	}
	selection, err := selector.Select(name, variant)
	if err != nil || selection == nil {
		logger.Warn("html: theme selection failed, rendering unthemed",
			slog.String("theme", name),
			slog.String("variant", variant),
			slog.Any("error", err),
		)
		return themeContext{}
	}

	tokens := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		for key, value := range manifest.Tokens {
			tokens[key] = value
		}
		if v, ok := manifest.Variants[selection.Variant]; ok {
			for key, value := range v.Tokens {
				tokens[key] = value
			}
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return themeContext{
		Name:    selection.Theme,
		Variant: selection.Variant,
		CSSVars: vars,
		Style:   cssVarsStyle(vars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

// StaticSelector serves a fixed set of manifests keyed by theme name. An
// empty name selects DefaultTheme; an empty variant selects DefaultVariant.
type StaticSelector struct {
	Manifests      map[string]*theme.Manifest
	DefaultTheme   string
	DefaultVariant string
}

var _ theme.ThemeSelector = StaticSelector{}

// NewStaticSelector indexes manifests by name.
func NewStaticSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) StaticSelector {
	s := StaticSelector{
		Manifests:      make(map[string]*theme.Manifest, len(manifests)),
		DefaultTheme:   defaultTheme,
		DefaultVariant: defaultVariant,
	}
	for _, m := range manifests {
		if m != nil && m.Name != "" {
			s.Manifests[m.Name] = m
		}
	}
	return s
}

func (s StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = s.DefaultTheme
	}
	manifest, ok := s.Manifests[name]
	if !ok {
		return nil, fmt.Errorf("html: unknown theme %q", name)
	}
	if variant = strings.TrimSpace(variant); variant == "" {
		variant = s.DefaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}
