package config

import "strings"

// GitHub Actions OIDC constants. The issuer mints the workflow tokens and
// the audience is the fixed value azure/login exchanges them under.
const (
	DefaultIssuer   = "https://token.actions.githubusercontent.com"
	DefaultAudience = "api://AzureADTokenExchange"
)

// DefaultParallelism bounds concurrent creation calls within a batch.
const DefaultParallelism = 4

// DefaultEntities returns the workflow entities a standard CI pipeline
// authenticates as: protected branches, deployment environments, and the
// pull_request trigger (which carries no discriminator).
func DefaultEntities() []Entity {
	return []Entity{
		{Type: "ref", Value: "refs/heads/main"},
		{Type: "ref", Value: "refs/heads/develop"},
		{Type: "environment", Value: "staging"},
		{Type: "environment", Value: "production"},
		{Type: "environment", Value: "development"},
		{Type: "pull_request"},
	}
}

// DefaultRoles returns the role bindings the deployment workflow needs:
// deploy rights on the resource group, experiment rights on the workspace,
// and read access across the subscription for diagnostics.
func DefaultRoles() []Role {
	return []Role{
		{Name: "Contributor", Scope: ScopeResourceGroup},
		{Name: "AzureML Data Scientist", Scope: ScopeWorkspace},
		{Name: "Reader", Scope: ScopeSubscription},
	}
}

func (c *Config) applyDefaults() {
	if c.Trust.Issuer == "" {
		c.Trust.Issuer = DefaultIssuer
	}
	if len(c.Trust.Audiences) == 0 {
		c.Trust.Audiences = []string{DefaultAudience}
	}
	if len(c.Trust.Entities) == 0 {
		c.Trust.Entities = DefaultEntities()
	}
	if len(c.Roles) == 0 {
		c.Roles = DefaultRoles()
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.Environment == "" {
		c.Environment = "staging"
	}
	if c.Workspace.FriendlyName == "" {
		c.Workspace.FriendlyName = c.Workspace.Name
	}
}

// Name returns the federated credential name for the entity, derived from
// type and value unless overridden. Credential names must be alphanumeric
// with dashes and underscores.
func (e Entity) Name() string {
	if e.CredentialName != "" {
		return e.CredentialName
	}
	name := "github-" + e.Type
	if e.Value != "" {
		name += "-" + sanitizeNameSegment(e.Value)
	}
	return name
}

func sanitizeNameSegment(s string) string {
	s = strings.TrimPrefix(s, "refs/heads/")
	s = strings.TrimPrefix(s, "refs/tags/")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
