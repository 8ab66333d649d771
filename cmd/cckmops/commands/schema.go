package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/cckmops/internal/config"
	"github.com/systmms/cckmops/internal/providers"
)

func NewSchemaCommand(cfg *config.Config) *cobra.Command {
	var (
		format string
		action string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the parameter schema",
		Long: `Print the action list, parameter descriptors and requirements of every
provider. With --action, print the JSON schema used to validate the
parameters of that action instead.

Examples:
  cckmops schema --format yaml
  cckmops schema --action aws_keys_create`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := providers.NewRegistry()

			if action != "" {
				doc, err := registry.ActionSchema(action)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), format, doc)
			}
			return writeOutput(cmd.OutOrStdout(), format, registry.Document())
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().StringVar(&action, "action", "", "Print the JSON schema of one action")

	return cmd
}
