package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azbind/cmd/azbind/handlers"
)

// Verify returns the command that probes existing federated access
// without reconciling anything.
func Verify() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the declared bindings are in place",
		Long: `Probe the cloud for the declared trust bindings and role assignments
without creating or changing anything.

Useful as a scheduled health check: the command exits non-zero when any
declared binding is missing or the target workspace is unreachable.

Examples:
  azbind verify
  azbind verify -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Verify(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "azbind.yaml", "Path to configuration file")

	return cmd
}
