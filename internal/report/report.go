// Package report renders the human-readable run summary and the
// machine-readable workflow outputs. Building a report is pure: it reads
// configuration, run state, and results, and performs no cloud calls.
package report

import (
	"fmt"
	"io"

	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/provisioning"
)

// Summary is the complete run report.
type Summary struct {
	Repository string
	Final      provisioning.RunState

	// Principal identifiers the operator registers as workflow secrets.
	PrincipalName  string
	ClientID       string
	TenantID       string
	SubscriptionID string

	// Per-reconciler outcome counts.
	Trust     provisioning.Counts
	Roles     provisioning.Counts
	Resources provisioning.Counts

	// FailedItems lists every item that failed or was skipped, with reason.
	FailedItems []provisioning.Result

	// CreatedResources names fallback resources this run provisioned.
	CreatedResources []string

	Verification       provisioning.VerificationStatus
	VerificationDetail string

	SimulationMode   bool
	SimulationReason string

	// Environments are the deployment environments covered by trust
	// bindings; the operator creates them in the repository settings.
	Environments []string
}

// Build assembles the summary from a finished run.
func Build(cfg *config.Config, state *provisioning.State, results *provisioning.ResultSet, final provisioning.RunState) Summary {
	s := Summary{
		Repository:         cfg.Repository.Slug(),
		Final:              final,
		PrincipalName:      state.Principal.Name,
		ClientID:           state.Principal.ClientID,
		TenantID:           state.Principal.TenantID,
		SubscriptionID:     cfg.SubscriptionID,
		Trust:              results.CountsFor(provisioning.ReconcilerTrust),
		Roles:              results.CountsFor(provisioning.ReconcilerRoles),
		Resources:          results.CountsFor(provisioning.ReconcilerResource),
		Verification:       state.Verification,
		VerificationDetail: state.VerificationDetail,
		SimulationMode:     state.SimulationMode,
		SimulationReason:   state.SimulationReason,
	}

	for _, r := range results.All() {
		if r.Status == provisioning.StatusFailed || r.Status == provisioning.StatusSkipped {
			s.FailedItems = append(s.FailedItems, r)
		}
		if r.Reconciler == provisioning.ReconcilerResource && r.Status == provisioning.StatusCreated {
			s.CreatedResources = append(s.CreatedResources, r.Item)
		}
	}

	for _, entity := range cfg.Trust.Entities {
		if entity.Type == "environment" && entity.Value != "" {
			s.Environments = append(s.Environments, entity.Value)
		}
	}

	return s
}

// Render writes the operator-facing summary.
func (s Summary) Render(w io.Writer) error {
	fmt.Fprintf(w, "federated access for %s: %s\n\n", s.Repository, s.Final)

	fmt.Fprintf(w, "principal: %s\n", s.PrincipalName)
	fmt.Fprintf(w, "  client id:       %s\n", s.ClientID)
	fmt.Fprintf(w, "  tenant id:       %s\n", s.TenantID)
	fmt.Fprintf(w, "  subscription id: %s\n\n", s.SubscriptionID)

	renderCounts(w, "trust bindings", s.Trust)
	renderCounts(w, "role bindings", s.Roles)
	for _, name := range s.CreatedResources {
		fmt.Fprintf(w, "provisioned missing target resource: %s\n", name)
	}

	if s.SimulationMode {
		fmt.Fprintf(w, "\nSIMULATION MODE: %s\n", s.SimulationReason)
		fmt.Fprintf(w, "skipped bindings were not applied; fix the target resource and re-run\n")
	}

	switch s.Verification {
	case provisioning.VerificationPassed:
		fmt.Fprintf(w, "\nverification: passed\n")
	case provisioning.VerificationFailed:
		fmt.Fprintf(w, "\nverification: FAILED\n  %s\n", s.VerificationDetail)
	case provisioning.VerificationSkipped:
		fmt.Fprintf(w, "\nverification: skipped (%s)\n", s.VerificationDetail)
	}

	if len(s.FailedItems) > 0 {
		fmt.Fprintf(w, "\nitems needing attention:\n")
		for _, r := range s.FailedItems {
			fmt.Fprintf(w, "  [%s] %s (%s): %s\n", r.Reconciler, r.Item, r.Status, r.Reason)
		}
	}

	fmt.Fprintf(w, "\nnext steps:\n")
	fmt.Fprintf(w, "  register these repository secrets in %s:\n", s.Repository)
	fmt.Fprintf(w, "    AZURE_CLIENT_ID:       %s\n", s.ClientID)
	fmt.Fprintf(w, "    AZURE_TENANT_ID:       %s\n", s.TenantID)
	fmt.Fprintf(w, "    AZURE_SUBSCRIPTION_ID: %s\n", s.SubscriptionID)
	if len(s.Environments) > 0 {
		fmt.Fprintf(w, "  create these deployment environments in the repository settings:\n")
		for _, env := range s.Environments {
			fmt.Fprintf(w, "    %s\n", env)
		}
	}

	return nil
}

func renderCounts(w io.Writer, label string, c provisioning.Counts) {
	if c.Total() == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %d created, %d already present", label, c.Created, c.AlreadyExists)
	if c.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", c.Failed)
	}
	if c.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", c.Skipped)
	}
	fmt.Fprintln(w)
}

// WriteGitHubOutput writes the identifiers in the key=value format the
// GITHUB_OUTPUT file expects, so a workflow invoking azbind can feed them
// straight into azure/login.
func (s Summary) WriteGitHubOutput(w io.Writer) error {
	_, err := fmt.Fprintf(w, "client-id=%s\ntenant-id=%s\nsubscription-id=%s\n",
		s.ClientID, s.TenantID, s.SubscriptionID)
	return err
}
