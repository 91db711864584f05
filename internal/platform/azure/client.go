// Package azure wraps the Azure identity, authorization, and resource
// control planes behind narrow interfaces consumed by the reconcilers.
package azure

import "context"

// PrincipalRef identifies the deployment principal (a user-assigned
// managed identity). Resolved once per run and read-only afterwards.
type PrincipalRef struct {
	// ID is the full ARM resource ID of the identity.
	ID string
	// Name is the identity's display name.
	Name string
	// ResourceGroup is the group the identity lives in, parsed from ID.
	ResourceGroup string
	// ClientID is handed to the CI workflow as AZURE_CLIENT_ID.
	ClientID string
	// PrincipalID is the service principal object ID role assignments
	// are granted to.
	PrincipalID string
	// TenantID is handed to the CI workflow as AZURE_TENANT_ID.
	TenantID string
	// Location is the Azure region of the identity resource.
	Location string
}

// TrustBinding is a federated identity credential: a rule letting an
// external token issuer mint tokens accepted as proof of the principal's
// identity, scoped to a subject pattern.
type TrustBinding struct {
	Name      string
	Issuer    string
	Subject   string
	Audiences []string
}

// RoleBinding is a role assignment granting a permission set to a
// principal at a resource scope.
type RoleBinding struct {
	// Name is the assignment name, a GUID. Generated when empty.
	Name             string
	RoleDefinitionID string
	PrincipalID      string
	Scope            string
}

// WorkspaceSpec holds the attributes needed to provision the target ML
// workspace when the role reconciler's fallback path runs. The dependent
// resource IDs are optional; the control plane rejects the create when
// they are required and absent, which the caller surfaces as a degraded
// run rather than an abort.
type WorkspaceSpec struct {
	ResourceGroup         string
	Name                  string
	Location              string
	FriendlyName          string
	StorageAccountID      string
	KeyVaultID            string
	ApplicationInsightsID string
	Tags                  map[string]string
}

// IdentityDirectory locates deployment principals.
type IdentityDirectory interface {
	// ListPrincipals returns all user-assigned identities visible in the
	// subscription. The resolver matches display names against this list.
	ListPrincipals(ctx context.Context) ([]PrincipalRef, error)

	// GetPrincipal fetches one identity by ARM resource ID. Used when the
	// operator disambiguates an AmbiguousMatch explicitly.
	GetPrincipal(ctx context.Context, resourceID string) (PrincipalRef, error)
}

// FederationManager manages federated identity credentials on a principal.
type FederationManager interface {
	ListTrustBindings(ctx context.Context, principal PrincipalRef) ([]TrustBinding, error)
	CreateTrustBinding(ctx context.Context, principal PrincipalRef, binding TrustBinding) (Outcome, error)
}

// RoleAssigner manages role assignments for a principal.
type RoleAssigner interface {
	// LookupRoleDefinition resolves a role display name ("Contributor")
	// to its role definition resource ID at the given scope.
	LookupRoleDefinition(ctx context.Context, scope, roleName string) (string, error)
	ListRoleBindings(ctx context.Context, scope, principalID string) ([]RoleBinding, error)
	CreateRoleBinding(ctx context.Context, binding RoleBinding) (Outcome, error)
}

// ResourceManager answers scope-existence questions and provisions the
// fallback resources (resource group, ML workspace).
type ResourceManager interface {
	ResourceGroupExists(ctx context.Context, name string) (bool, error)
	EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (Outcome, error)
	WorkspaceExists(ctx context.Context, resourceGroup, name string) (bool, error)
	EnsureWorkspace(ctx context.Context, spec WorkspaceSpec) (Outcome, error)
}

// ProbeTarget is the verification endpoint: an authentication handshake
// plus a read against the real target resource.
type ProbeTarget interface {
	// Handshake acquires a management-plane token, proving the ambient
	// credential chain works end to end.
	Handshake(ctx context.Context) error

	// GetWorkspace reads the target workspace and returns its
	// provisioning state.
	GetWorkspace(ctx context.Context, resourceGroup, name string) (string, error)
}

// ControlPlane combines every control-plane interface the pipeline needs.
type ControlPlane interface {
	IdentityDirectory
	FederationManager
	RoleAssigner
	ResourceManager
	ProbeTarget
}
