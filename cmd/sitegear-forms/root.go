package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sitegear/go-sitegear/internal/config"
	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/form/definition"
)

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "sitegear-forms",
		Short:        "Render, fill and validate sitegear form definitions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	root.AddCommand(
		newRenderCmd(a),
		newFillCmd(a),
		newValidateCmd(a),
		newImportCmd(a),
		newCheckCmd(a),
		newGrantCmd(a),
	)
	return root
}

// loadForm reads a definition file, or picks formName out of a directory of
// definitions.
func loadForm(path, formName string) (*form.Form, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return definition.LoadFile(path)
	}

	forms, err := definition.LoadFS(os.DirFS(path))
	if err != nil {
		return nil, err
	}
	names := definition.Names(forms)
	if formName == "" && len(names) == 1 {
		formName = names[0]
	}
	f, ok := forms[formName]
	if !ok {
		return nil, fmt.Errorf("form %q not found in %s (available: %s)", formName, filepath.Clean(path), strings.Join(names, ", "))
	}
	return f, nil
}

// readMapping decodes a JSON or YAML file into a value mapping. An empty
// path yields nil.
func readMapping[T any](path string) (T, error) {
	var out T
	if path == "" {
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
