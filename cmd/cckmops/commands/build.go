package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/cckmops/internal/config"
	"github.com/systmms/cckmops/internal/dispatch"
)

func NewBuildCommand(cfg *config.Config) *cobra.Command {
	var (
		params     paramOptions
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "build <action>",
		Short: "Print the ksctl command for an action without running it",
		Long: `Validate parameters and print the cckm command an action would run.

Nothing is executed and names are not resolved, so "id" is printed as given.

Examples:
  cckmops build azure_keys_create -p key_name=k1 -p vault=v1 -p kty=RSA
  cckmops build oci_vaults_create --params-file vault.json --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]

			// No executor is needed for a dry run.
			d := dispatch.New(nil, dispatch.Options{DisableResolution: true}, loggerFor(cfg))
			p, err := params.params(d.Registry(), action)
			if err != nil {
				return err
			}

			command, err := d.Build(action, p)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeOutput(cmd.OutOrStdout(), "json", command)
			}

			binary := "ksctl"
			if def, err := loadDefinition(cfg); err == nil {
				binary = def.Ksctl.Binary
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), binary+" "+strings.Join(command, " "))
			return err
		},
	}

	params.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the command tokens as a JSON array")

	return cmd
}
