// Package identity resolves the deployment principal the reconcilers bind.
package identity

import (
	"fmt"
	"strings"

	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
)

// NotFoundError is returned when no identity matches the display name.
// Candidates carries near-matches for diagnostics; it is empty when
// nothing in the subscription comes close.
type NotFoundError struct {
	Query      string
	Candidates []azure.PrincipalRef
}

func (e *NotFoundError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("principal %q not found (0 candidates)", e.Query)
	}
	return fmt.Sprintf("principal %q not found; near matches: %s", e.Query, joinNames(e.Candidates))
}

// AmbiguousMatchError is returned when several identities share the display
// name. The run never silently picks one; the operator must pin the
// principal by resource ID.
type AmbiguousMatchError struct {
	Query      string
	Candidates []azure.PrincipalRef
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("principal %q is ambiguous (%d matches: %s); set principal.id to disambiguate",
		e.Query, len(e.Candidates), joinNames(e.Candidates))
}

func joinNames(refs []azure.PrincipalRef) string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.ID
	}
	return strings.Join(names, ", ")
}

// Resolver locates the deployment principal by display name, or by ARM
// resource ID when the operator pinned one.
type Resolver struct{}

// NewResolver creates a new identity resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Name implements the provisioning.Phase interface.
func (r *Resolver) Name() string { return "identity" }

// State implements the provisioning.Phase interface.
func (r *Resolver) State() provisioning.RunState { return provisioning.StateResolveIdentity }

// Reconcile resolves the principal and stores it in the run state. Any
// failure here is hard: without a principal nothing downstream can run.
func (r *Resolver) Reconcile(ctx *provisioning.Context) error {
	if id := ctx.Config.Principal.ID; id != "" {
		ref, err := ctx.Cloud.GetPrincipal(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to resolve pinned principal: %w", err)
		}
		ctx.State.Principal = ref
		ctx.Observer.Printf("Resolved principal %s (client %s, tenant %s)", ref.Name, ref.ClientID, ref.TenantID)
		return nil
	}

	query := ctx.Config.Principal.DisplayName
	principals, err := ctx.Cloud.ListPrincipals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list principals: %w", err)
	}

	var matches []azure.PrincipalRef
	for _, p := range principals {
		if p.Name == query {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return &NotFoundError{Query: query, Candidates: nearMatches(principals, query)}
	case 1:
		ctx.State.Principal = matches[0]
		ctx.Observer.Printf("Resolved principal %s (client %s, tenant %s)",
			matches[0].Name, matches[0].ClientID, matches[0].TenantID)
		return nil
	default:
		return &AmbiguousMatchError{Query: query, Candidates: matches}
	}
}

// nearMatches returns identities whose names contain the query (or vice
// versa) case-insensitively. Purely diagnostic.
func nearMatches(principals []azure.PrincipalRef, query string) []azure.PrincipalRef {
	q := strings.ToLower(query)
	var near []azure.PrincipalRef
	for _, p := range principals {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			near = append(near, p)
		}
	}
	return near
}
