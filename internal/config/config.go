// Package config loads and validates the azbind run configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full run configuration.
type Config struct {
	// Repository identifies the GitHub repository whose workflows are
	// granted federated access.
	Repository Repository `yaml:"repository"`

	// Principal identifies the deployment principal to bind.
	Principal Principal `yaml:"principal"`

	// SubscriptionID is the Azure subscription everything lives in.
	SubscriptionID string `yaml:"subscription_id"`

	// ResourceGroup is the target resource group; created by the fallback
	// path when absent.
	ResourceGroup ResourceGroup `yaml:"resource_group"`

	// Workspace is the target ML workspace; created by the fallback path
	// when absent.
	Workspace Workspace `yaml:"workspace"`

	// Trust configures the federated trust bindings to reconcile.
	Trust Trust `yaml:"trust"`

	// Roles lists the role bindings to reconcile.
	Roles []Role `yaml:"roles"`

	// Environment tags created resources (staging, production, ...).
	Environment string `yaml:"environment"`

	// Parallelism bounds concurrent creation calls within a batch.
	Parallelism int `yaml:"parallelism"`
}

// Repository is a GitHub owner/name pair.
type Repository struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// Slug returns "owner/name".
func (r Repository) Slug() string {
	return r.Owner + "/" + r.Name
}

// Principal selects the deployment principal.
type Principal struct {
	// DisplayName is matched exactly against identity names.
	DisplayName string `yaml:"display_name"`

	// ID optionally pins the principal by ARM resource ID, bypassing
	// name resolution. Required when the display name is ambiguous.
	ID string `yaml:"id,omitempty"`
}

// ResourceGroup names the target resource group.
type ResourceGroup struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// Workspace names the target ML workspace and the optional dependent
// resources the fallback create needs.
type Workspace struct {
	Name                  string `yaml:"name"`
	FriendlyName          string `yaml:"friendly_name,omitempty"`
	StorageAccountID      string `yaml:"storage_account_id,omitempty"`
	KeyVaultID            string `yaml:"key_vault_id,omitempty"`
	ApplicationInsightsID string `yaml:"application_insights_id,omitempty"`
}

// Trust configures the federated trust reconciler.
type Trust struct {
	// Issuer defaults to the GitHub Actions OIDC issuer.
	Issuer string `yaml:"issuer,omitempty"`

	// Audiences defaults to the Azure token-exchange audience.
	Audiences []string `yaml:"audiences,omitempty"`

	// Entities lists the workflow entities to trust. Defaults cover the
	// standard CI triggers when empty.
	Entities []Entity `yaml:"entities,omitempty"`
}

// Entity is one workflow entity to trust: a branch, an environment, a tag,
// or a discriminator-less trigger such as pull_request.
type Entity struct {
	// Type is the subject segment after the repo slug (environment, ref,
	// pull_request, ...).
	Type string `yaml:"type"`

	// Value is the discriminator (branch ref, environment name). May be
	// empty for trigger types without one.
	Value string `yaml:"value,omitempty"`

	// CredentialName overrides the derived federated credential name.
	CredentialName string `yaml:"credential_name,omitempty"`
}

// Role is one role binding to reconcile.
type Role struct {
	// Name is the role definition display name ("Contributor").
	Name string `yaml:"name"`

	// Scope is a scope alias (subscription, resource-group, workspace)
	// or an explicit ARM scope path starting with "/".
	Scope string `yaml:"scope"`
}

// Scope aliases accepted in Role.Scope.
const (
	ScopeSubscription  = "subscription"
	ScopeResourceGroup = "resource-group"
	ScopeWorkspace     = "workspace"
)

// ExpandScope resolves a scope alias to a full ARM scope path. Explicit
// paths pass through untouched.
func (c *Config) ExpandScope(scope string) (string, error) {
	if strings.HasPrefix(scope, "/") {
		return scope, nil
	}
	switch scope {
	case ScopeSubscription:
		return "/subscriptions/" + c.SubscriptionID, nil
	case ScopeResourceGroup:
		return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", c.SubscriptionID, c.ResourceGroup.Name), nil
	case ScopeWorkspace:
		return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.MachineLearningServices/workspaces/%s",
			c.SubscriptionID, c.ResourceGroup.Name, c.Workspace.Name), nil
	}
	return "", fmt.Errorf("unknown scope alias %q (want %s, %s, %s, or an ARM path)",
		scope, ScopeSubscription, ScopeResourceGroup, ScopeWorkspace)
}

// LoadFile reads, parses, defaults, and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses, defaults, and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
