package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitegear/go-sitegear/pkg/form"
	"github.com/sitegear/go-sitegear/pkg/render"
	"github.com/sitegear/go-sitegear/pkg/renderers/html"
)

// renderFlags are shared by render and import.
type renderFlags struct {
	values          string
	errors          string
	includeInactive bool
	strict          bool
	csrfName        string
	csrfToken       string
	output          string
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "JSON or YAML file with field values")
	cmd.Flags().StringVar(&f.errors, "errors", "", "JSON or YAML file mapping field names to error messages")
	cmd.Flags().BoolVar(&f.includeInactive, "include-inactive", false, "Render inactive elements hidden so the client can toggle them")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on element or field kinds without a renderer")
	cmd.Flags().StringVar(&f.csrfName, "csrf-name", "_csrf", "Name of the anti-forgery hidden field")
	cmd.Flags().StringVar(&f.csrfToken, "csrf-token", "", "Anti-forgery token to embed")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (stdout if empty)")
}

func (a *app) renderHTML(ctx context.Context, cmd *cobra.Command, f *form.Form, flags renderFlags) error {
	values, err := readMapping[map[string]any](flags.values)
	if err != nil {
		return err
	}
	errs, err := readMapping[map[string][]string](flags.errors)
	if err != nil {
		return err
	}

	selector, err := a.cfg.ThemeSelector()
	if err != nil {
		return err
	}
	opts := []html.Option{html.WithLogger(a.logger)}
	if selector != nil {
		opts = append(opts, html.WithTheme(selector, a.cfg.ThemeName, a.cfg.ThemeVariant))
	}
	renderer, err := html.New(opts...)
	if err != nil {
		return err
	}

	renderOpts := render.Options{
		Values:          values,
		Errors:          errs,
		IncludeInactive: flags.includeInactive,
		Logger:          a.logger,
	}
	if flags.strict {
		renderOpts.Policy = render.AbortOnUnsupported
	}
	if flags.csrfToken != "" {
		renderOpts.Hidden = append(renderOpts.Hidden, render.CSRFToken(flags.csrfName, flags.csrfToken))
	}

	out, err := renderer.Render(ctx, f, renderOpts)
	if err != nil {
		return err
	}
	if flags.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(flags.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info("form written", "form", f.Name(), "path", flags.output)
	return nil
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		flags    renderFlags
		formName string
	)
	cmd := &cobra.Command{
		Use:   "render DEFINITION",
		Short: "Render a form definition as HTML",
		Long:  "Render a form definition file, or one form of a directory of definitions, as an HTML <form> fragment.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadForm(args[0], formName)
			if err != nil {
				return err
			}
			return a.renderHTML(cmd.Context(), cmd, f, flags)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&formName, "form", "", "Form name when DEFINITION is a directory")
	return cmd
}
