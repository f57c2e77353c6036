package config

import (
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/sitegear/go-sitegear/pkg/renderers/html"
)

// themeFile is the on-disk manifest layout:
//
//	name: acme
//	tokens: {brand: "#123456"}
//	variants:
//	  dark: {tokens: {brand: "#654321"}}
type themeFile struct {
	Name     string            `yaml:"name"`
	Tokens   map[string]string `yaml:"tokens"`
	Variants map[string]struct {
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"variants"`
}

// ThemeSelector loads ThemeFile. It returns a nil selector when no file is
// configured.
func (c Config) ThemeSelector() (theme.ThemeSelector, error) {
	if c.ThemeFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.ThemeFile)
	if err != nil {
		return nil, fmt.Errorf("config: read theme: %w", err)
	}
	var raw themeFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse theme %s: %w", c.ThemeFile, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: theme %s has no name", ErrInvalidConfig, c.ThemeFile)
	}

	manifest := &theme.Manifest{
		Name:     raw.Name,
		Tokens:   raw.Tokens,
		Variants: make(map[string]theme.Variant, len(raw.Variants)),
	}
	for name, v := range raw.Variants {
		manifest.Variants[name] = theme.Variant{Tokens: v.Tokens}
	}
	return html.NewStaticSelector(raw.Name, "", manifest), nil
}
