// Package federation reconciles federated trust bindings: the rules that
// let the GitHub Actions token issuer mint tokens accepted as proof of the
// deployment principal's identity.
package federation

import (
	"context"
	"fmt"

	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
	"github.com/imamik/azbind/internal/util/async"
)

// Reconciler ensures the required trust bindings exist on the principal.
type Reconciler struct{}

// NewReconciler creates a new trust reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Name implements the provisioning.Phase interface.
func (r *Reconciler) Name() string { return "trust" }

// State implements the provisioning.Phase interface.
func (r *Reconciler) State() provisioning.RunState { return provisioning.StateReconcileTrust }

// DesiredBindings derives the full trust binding set from configuration.
// Pure; the verification probe reuses it to know what to expect.
func DesiredBindings(cfg *config.Config) []azure.TrustBinding {
	bindings := make([]azure.TrustBinding, 0, len(cfg.Trust.Entities))
	for _, entity := range cfg.Trust.Entities {
		bindings = append(bindings, azure.TrustBinding{
			Name:      entity.Name(),
			Issuer:    cfg.Trust.Issuer,
			Subject:   Subject(cfg.Repository.Owner, cfg.Repository.Name, entity.Type, entity.Value),
			Audiences: cfg.Trust.Audiences,
		})
	}
	return bindings
}

// Reconcile lists the bindings currently on the principal and creates the
// missing ones. Each item is classified independently; one failure never
// aborts the rest of the batch. Re-running with identical inputs is a
// no-op reporting AlreadyExists for every item.
func (r *Reconciler) Reconcile(ctx *provisioning.Context) error {
	principal := ctx.State.Principal
	desired := DesiredBindings(ctx.Config)

	existing, err := ctx.Cloud.ListTrustBindings(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to list existing trust bindings: %w", err)
	}
	existingSubjects := make(map[string]bool, len(existing))
	existingByName := make(map[string]azure.TrustBinding, len(existing))
	for _, binding := range existing {
		existingSubjects[binding.Issuer+"|"+binding.Subject] = true
		existingByName[binding.Name] = binding
	}

	tasks := make([]async.Task[provisioning.Result], 0, len(desired))
	for _, binding := range desired {
		if existingSubjects[binding.Issuer+"|"+binding.Subject] {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerTrust,
				Item:       binding.Name,
				Status:     provisioning.StatusAlreadyExists,
			})
			continue
		}

		// The create is an upsert keyed by credential name. A foreign
		// credential under the desired name would be silently replaced,
		// which is a revocation; refuse instead.
		if other, taken := existingByName[binding.Name]; taken {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerTrust,
				Item:       binding.Name,
				Status:     provisioning.StatusFailed,
				Reason: fmt.Sprintf("name collision: credential %s is already bound to subject %s; rename it or set credential_name",
					binding.Name, other.Subject),
			})
			continue
		}

		tasks = append(tasks, async.Task[provisioning.Result]{
			Name: binding.Name,
			Func: r.createTask(ctx, principal, binding),
		})
	}

	for _, result := range async.RunBounded(ctx, int64(ctx.Config.Parallelism), tasks) {
		if result.Skipped {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerTrust,
				Item:       result.Name,
				Status:     provisioning.StatusSkipped,
				Reason:     "run cancelled before creation was attempted",
			})
			continue
		}
		r.record(ctx, result.Value)
	}

	return nil
}

func (r *Reconciler) createTask(ctx *provisioning.Context, principal azure.PrincipalRef, binding azure.TrustBinding) func(context.Context) provisioning.Result {
	return func(taskCtx context.Context) provisioning.Result {
		outcome, err := ctx.Cloud.CreateTrustBinding(taskCtx, principal, binding)
		result := provisioning.Result{
			Reconciler: provisioning.ReconcilerTrust,
			Item:       binding.Name,
			Status:     provisioning.StatusFromOutcome(outcome),
		}
		if err != nil && result.Status == provisioning.StatusFailed {
			result.Reason = err.Error()
		}
		return result
	}
}

func (r *Reconciler) record(ctx *provisioning.Context, result provisioning.Result) {
	ctx.Results.Add(result)
	ctx.Observer.Event(provisioning.Event{
		Type:    eventType(result.Status),
		Phase:   r.Name(),
		Item:    result.Item,
		Message: result.Reason,
	})
}

func eventType(status provisioning.Status) provisioning.EventType {
	switch status {
	case provisioning.StatusCreated:
		return provisioning.EventBindingCreated
	case provisioning.StatusAlreadyExists:
		return provisioning.EventBindingExists
	case provisioning.StatusSkipped:
		return provisioning.EventBindingSkipped
	default:
		return provisioning.EventBindingFailed
	}
}
