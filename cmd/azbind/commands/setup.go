package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azbind/cmd/azbind/handlers"
)

// Setup returns the command that reconciles federated access end to end.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: azbind.yaml)
//
// Azure credentials come from the ambient credential chain (environment
// variables, workload identity, managed identity, Azure CLI), the same
// chain every Azure SDK tool uses.
func Setup() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Reconcile trust bindings and role assignments for the repository",
		Long: `Reconcile everything a GitHub Actions workflow needs to deploy to Azure
without stored secrets.

The command resolves the deployment principal, creates the missing
federated identity credentials and role assignments, provisions absent
target resources, verifies the result, and prints the identifiers to
register as repository secrets.

Re-running with the same configuration is a no-op: existing bindings are
reported, never duplicated.

Examples:
  # Reconcile using azbind.yaml in the current directory
  azbind setup

  # Reconcile using a specific config file
  azbind setup -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Setup(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "azbind.yaml", "Path to configuration file")

	return cmd
}
