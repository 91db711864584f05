package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azbind/cmd/azbind/handlers"
)

// Init returns the command that writes a starter configuration file.
func Init() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write an azbind.yaml starter configuration.

The generated file carries the standard trust entities (main, develop,
the three deployment environments, pull_request) and the standard role
set; edit the repository, principal, and subscription fields before
running setup.

Examples:
  azbind init
  azbind init -o infra/azbind.yaml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "azbind.yaml", "Path to write the configuration to")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
