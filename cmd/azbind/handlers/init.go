package handlers

import (
	"fmt"
	"os"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// writeFile writes data to a file (for testing injection).
	writeFile = os.WriteFile
)

// starterConfig is the template written by azbind init. It spells out the
// default trust entities and role set so operators see what they get and
// can trim it down.
const starterConfig = `# azbind configuration
# Run "azbind setup" after filling in the repository, principal, and
# subscription fields.

repository:
  owner: my-org
  name: my-repo

principal:
  # Display name of the user-assigned managed identity to bind. Set "id"
  # to the full resource ID instead when the name is ambiguous.
  display_name: my-deploy-identity

subscription_id: 00000000-0000-0000-0000-000000000000

resource_group:
  name: my-resource-group
  location: westeurope

workspace:
  name: my-workspace

# The entities below are the defaults; remove this block to get the same
# set, or edit it to match your branches and environments.
trust:
  entities:
    - type: ref
      value: refs/heads/main
    - type: ref
      value: refs/heads/develop
    - type: environment
      value: staging
    - type: environment
      value: production
    - type: environment
      value: development
    - type: pull_request

# Default role set; scopes are aliases (subscription, resource-group,
# workspace) or explicit ARM paths.
roles:
  - name: Contributor
    scope: resource-group
  - name: AzureML Data Scientist
    scope: workspace
  - name: Reader
    scope: subscription
`

// Init writes the starter configuration file.
func Init(outputPath string, force bool) error {
	if fileExists(outputPath) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", outputPath)
	}

	if err := writeFile(outputPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote %s.\n", outputPath)
	fmt.Println("Edit the repository, principal, and subscription fields, then run:")
	fmt.Println()
	fmt.Println("  azbind setup -c " + outputPath)
	return nil
}
