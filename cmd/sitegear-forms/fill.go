package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitegear/go-sitegear/pkg/render"
	"github.com/sitegear/go-sitegear/pkg/renderers/prompt"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		formName string
		values   string
		output   string
		strict   bool
	)
	cmd := &cobra.Command{
		Use:   "fill DEFINITION",
		Short: "Fill a form interactively and print the values as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadForm(args[0], formName)
			if err != nil {
				return err
			}
			initial, err := readMapping[map[string]any](values)
			if err != nil {
				return err
			}
			opts := []prompt.Option{
				prompt.WithDriver(prompt.NewSurveyDriver(cmd.ErrOrStderr())),
				prompt.WithInitialValues(initial),
				prompt.WithLogger(a.logger),
			}
			if strict {
				opts = append(opts, prompt.WithPolicy(render.AbortOnUnsupported))
			}

			answers, err := prompt.Fill(cmd.Context(), f, opts...)
			if err != nil {
				return err
			}
			if errs := f.Validate(answers); errs != nil {
				return errs
			}

			payload, err := json.MarshalIndent(answers, "", "  ")
			if err != nil {
				return err
			}
			payload = append(payload, '\n')
			if output == "" {
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(output, payload, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formName, "form", "", "Form name when DEFINITION is a directory")
	cmd.Flags().StringVar(&values, "values", "", "JSON or YAML file with initial values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on field kinds that cannot be prompted")
	return cmd
}
