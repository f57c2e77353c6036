package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitegear/go-sitegear/pkg/form/openapi"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		flags        renderFlags
		operationID  string
		list         bool
		externalRefs bool
	)
	cmd := &cobra.Command{
		Use:   "import OPENAPI",
		Short: "Render the request body of an OpenAPI operation as a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			importer := openapi.NewImporter(openapi.WithExternalRefs(externalRefs))

			if list {
				ops, err := importer.Operations(cmd.Context(), data)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, op := range ops {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", op.ID, op.Method, op.Path)
				}
				return tw.Flush()
			}

			if operationID == "" {
				return errors.New("--operation is required unless --list is set")
			}
			f, err := importer.Import(cmd.Context(), data, operationID)
			if err != nil {
				return err
			}
			return a.renderHTML(cmd.Context(), cmd, f, flags)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&operationID, "operation", "", "Operation ID to import")
	cmd.Flags().BoolVar(&list, "list", false, "List operations and exit")
	cmd.Flags().BoolVar(&externalRefs, "external-refs", false, "Allow external $ref resolution")
	return cmd
}
