package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/cckmops/internal/config"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/providers"
	"github.com/systmms/cckmops/pkg/provider"
)

func NewActionsCommand(cfg *config.Config) *cobra.Command {
	var (
		providerName string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List available actions",
		Long: `Display every action cckmops accepts, grouped by provider.

Use --verbose to include the required and optional parameters of each action.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := providers.NewRegistry()

			names := registry.Providers()
			if providerName != "" {
				p, ok := provider.ParseName(providerName)
				if !ok {
					return dserrors.UserError{
						Message:    fmt.Sprintf("Unknown provider %q", providerName),
						Suggestion: "Use one of: azure, aws, gcp, oci",
					}
				}
				names = []provider.Name{p}
			}

			out := cmd.OutOrStdout()
			for i, p := range names {
				t, err := registry.Table(p)
				if err != nil {
					return err
				}
				if i > 0 {
					_, _ = fmt.Fprintln(out)
				}
				_, _ = fmt.Fprintf(out, "%s: %s\n", p, t.Description)

				ops, _ := registry.ListOperations(p)
				reqs, _ := registry.RequirementsFor(p)

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				if verbose {
					_, _ = fmt.Fprintf(w, "ACTION\tREQUIRED\tOPTIONAL\n")
				} else {
					_, _ = fmt.Fprintf(w, "ACTION\tREQUIRED\n")
				}
				for _, op := range ops {
					req := reqs[op]
					if verbose {
						_, _ = fmt.Fprintf(w, "%s_%s\t%s\t%s\n", p, op, joinOrDash(req.Required), joinOrDash(req.Optional))
					} else {
						_, _ = fmt.Fprintf(w, "%s_%s\t%s\n", p, op, joinOrDash(req.Required))
					}
				}
				_ = w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "Only list actions of this provider")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show optional parameters")

	return cmd
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
