// Package verify probes the cloud after reconciliation: it confirms every
// declared binding is actually visible, then performs an authentication
// handshake and reads the target workspace. Bindings propagate eventually,
// so a probe failure is retried with backoff inside a bounded budget.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/azbind/internal/metrics"
	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
	"github.com/imamik/azbind/internal/provisioning/federation"
	"github.com/imamik/azbind/internal/provisioning/roles"
	"github.com/imamik/azbind/internal/util/retry"
)

// Probe is the verification phase.
type Probe struct{}

// NewProbe creates the verification probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Name implements the provisioning.Phase interface.
func (p *Probe) Name() string { return "verify" }

// State implements the provisioning.Phase interface.
func (p *Probe) State() provisioning.RunState { return provisioning.StateVerify }

// Reconcile runs the probe. A probe that exhausts its retries marks the
// run's verification failed and dumps the observed bindings for
// diagnosis; it never returns a hard error, the terminal state handles
// the degradation. In simulation mode the probe is skipped: there is no
// real target to verify against.
func (p *Probe) Reconcile(ctx *provisioning.Context) error {
	if ctx.State.SimulationMode {
		ctx.State.Verification = provisioning.VerificationSkipped
		ctx.State.VerificationDetail = "simulation mode: " + ctx.State.SimulationReason
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventVerifySkipped,
			Phase:   p.Name(),
			Message: ctx.State.VerificationDetail,
		})
		return nil
	}

	// Probe-only runs (azbind verify) arrive without the role reconciler
	// having cached the definition IDs.
	if err := roles.ResolveDefinitions(ctx); err != nil {
		return err
	}

	budget, cancel := context.WithTimeout(ctx, ctx.Timeouts.Verify)
	defer cancel()

	err := retry.WithExponentialBackoff(budget, func() error {
		err := p.check(budget, ctx)
		if err == nil {
			metrics.VerificationAttempts.WithLabelValues("passed").Inc()
			return nil
		}
		metrics.VerificationAttempts.WithLabelValues("failed").Inc()
		if azure.IsNonRetryable(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(ctx.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(ctx.Timeouts.RetryInitialDelay),
	)

	if err != nil {
		ctx.State.Verification = provisioning.VerificationFailed
		ctx.State.VerificationDetail = err.Error()
		ctx.Observer.Event(provisioning.Event{
			Type:    provisioning.EventVerifyFailed,
			Phase:   p.Name(),
			Message: err.Error(),
			Fields: map[string]string{
				"observed_trust_bindings": fmt.Sprintf("%d", len(ctx.State.ObservedTrust)),
				"observed_role_bindings":  fmt.Sprintf("%d", len(ctx.State.ObservedRoles)),
			},
		})
		return nil
	}

	ctx.State.Verification = provisioning.VerificationPassed
	ctx.Observer.Event(provisioning.Event{
		Type:  provisioning.EventVerifyPassed,
		Phase: p.Name(),
	})
	return nil
}

// check performs one probe pass. It confirms the bindings first and only
// then exercises the handshake and the target read: a green probe means
// the declared state is really there, not just that some call succeeded.
// Each pass refreshes the observed-state dump so a final failure reports
// what the cloud actually returned.
func (p *Probe) check(ctx context.Context, pctx *provisioning.Context) error {
	principal := pctx.State.Principal

	observedTrust, err := pctx.Cloud.ListTrustBindings(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to list trust bindings: %w", err)
	}
	pctx.State.ObservedTrust = observedTrust

	if missing := missingTrust(federation.DesiredBindings(pctx.Config), observedTrust); len(missing) > 0 {
		return fmt.Errorf("trust bindings not yet visible: %s", strings.Join(missing, ", "))
	}

	subscriptionScope := "/subscriptions/" + pctx.Config.SubscriptionID
	observedRoles, err := pctx.Cloud.ListRoleBindings(ctx, subscriptionScope, principal.PrincipalID)
	if err != nil {
		return fmt.Errorf("failed to list role bindings: %w", err)
	}
	pctx.State.ObservedRoles = observedRoles

	if missing := missingRoles(roles.DesiredBindings(pctx.Config, pctx.State), observedRoles); len(missing) > 0 {
		return fmt.Errorf("role bindings not yet visible: %s", strings.Join(missing, ", "))
	}

	if err := pctx.Cloud.Handshake(ctx); err != nil {
		return fmt.Errorf("authentication handshake failed: %w", err)
	}

	provisioningState, err := pctx.Cloud.GetWorkspace(ctx, pctx.Config.ResourceGroup.Name, pctx.Config.Workspace.Name)
	if err != nil {
		return fmt.Errorf("failed to read workspace %s: %w", pctx.Config.Workspace.Name, err)
	}
	if !strings.EqualFold(provisioningState, "Succeeded") {
		return fmt.Errorf("workspace %s is in provisioning state %s", pctx.Config.Workspace.Name, provisioningState)
	}

	return nil
}

func missingTrust(desired, observed []azure.TrustBinding) []string {
	seen := make(map[string]bool, len(observed))
	for _, b := range observed {
		seen[b.Issuer+"|"+b.Subject] = true
	}
	var missing []string
	for _, b := range desired {
		if !seen[b.Issuer+"|"+b.Subject] {
			missing = append(missing, b.Name)
		}
	}
	return missing
}

func missingRoles(desired, observed []azure.RoleBinding) []string {
	var missing []string
	for _, d := range desired {
		found := false
		for _, o := range observed {
			if strings.EqualFold(o.RoleDefinitionID, d.RoleDefinitionID) && strings.EqualFold(o.Scope, d.Scope) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, d.RoleDefinitionID+" at "+d.Scope)
		}
	}
	return missing
}
