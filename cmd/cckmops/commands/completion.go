package commands

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/systmms/cckmops/internal/config"
)

// completionWriters generate the completion script of each supported shell.
var completionWriters = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cckmops.

Besides commands and flags, the scripts complete CCKM action names for the
first argument of run and build, taken from the action registry:

  $ cckmops run azure_keys_<TAB>
  azure_keys_backup  azure_keys_create  azure_keys_delete  azure_keys_get ...

To load completions in the current shell:

  Bash:       $ source <(cckmops completion bash)
  Zsh:        $ source <(cckmops completion zsh)
  Fish:       $ cckmops completion fish | source
  PowerShell: PS> cckmops completion powershell | Out-String | Invoke-Expression

To load them for every session, write the script to your shell's completion
directory, e.g. cckmops completion zsh > "${fpath[1]}/_cckmops".
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionWriters[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}

	return cmd
}
