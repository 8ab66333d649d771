package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/cckmops/internal/config"
	"github.com/systmms/cckmops/internal/dispatch"
	"github.com/systmms/cckmops/pkg/exec"
)

func NewRunCommand(cfg *config.Config) *cobra.Command {
	return NewRunCommandWithExecutor(cfg, nil)
}

// NewRunCommandWithExecutor creates the run command with a custom executor.
// This is primarily for testing; nil runs ksctl.
func NewRunCommandWithExecutor(cfg *config.Config, executor exec.Executor) *cobra.Command {
	var (
		params paramOptions
		flags  dispatchFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Run one CCKM action",
		Long: `Validate, resolve and execute one action such as azure_keys_get.

Resource names given as "id" are resolved to CCKM ids before execution
unless --no-resolve is set. The response is printed as JSON or YAML; a
failed action exits non-zero after printing its error.

Examples:
  # Get an Azure key by name
  cckmops run azure_keys_get --param id=my-key

  # Create an AWS KMS key from a JSON object
  cckmops run aws_keys_create --params '{"region":"us-east-1","kms":"kms-1","alias":"payments"}'

  # Parameters from a file, output as YAML
  cckmops run gcp_keyrings_list --params-file keyrings.yaml --format yaml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]

			def, err := loadDefinition(cfg)
			if err != nil {
				return err
			}

			d := newDispatcher(cfg, def, executor, flags)
			p, err := params.params(d.Registry(), action)
			if err != nil {
				return err
			}

			resp := d.Dispatch(cmd.Context(), dispatch.Request{Action: action, Params: p})
			if err := writeOutput(cmd.OutOrStdout(), format, resp); err != nil {
				return err
			}
			return responseError(resp)
		},
	}

	params.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml)")

	return cmd
}
