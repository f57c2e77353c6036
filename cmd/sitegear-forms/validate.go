package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var errValidation = errors.New("validation failed")

func newValidateCmd(a *app) *cobra.Command {
	var (
		formName string
		values   string
	)
	cmd := &cobra.Command{
		Use:   "validate DEFINITION",
		Short: "Validate submitted values against a form definition",
		Long:  "Validate a values file against the active fields of a form. Fields hidden by their conditions are not validated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadForm(args[0], formName)
			if err != nil {
				return err
			}
			submitted, err := readMapping[map[string]any](values)
			if err != nil {
				return err
			}

			errs := f.Validate(submitted)
			out := cmd.OutOrStdout()
			if errs == nil {
				fmt.Fprintln(out, "ok")
				return nil
			}
			names := make([]string, 0, len(errs))
			for name := range errs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(errs[name], "; "))
			}
			a.logger.Debug("validation failed", "form", f.Name(), "fields", len(names))
			return errValidation
		},
	}
	cmd.Flags().StringVar(&formName, "form", "", "Form name when DEFINITION is a directory")
	cmd.Flags().StringVar(&values, "values", "", "JSON or YAML file with submitted values")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}
