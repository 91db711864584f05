// Package roles reconciles role assignments: the grants that give the
// deployment principal its permissions at the subscription, resource
// group, and workspace scopes. When a target scope does not exist yet the
// reconciler provisions it first; when that fallback fails the run
// degrades to simulation mode instead of aborting.
package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
	"github.com/imamik/azbind/internal/util/async"
)

// Reconciler ensures the configured role bindings exist for the principal.
type Reconciler struct{}

// NewReconciler creates a new role reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Name implements the provisioning.Phase interface.
func (r *Reconciler) Name() string { return "roles" }

// State implements the provisioning.Phase interface.
func (r *Reconciler) State() provisioning.RunState { return provisioning.StateReconcileRoles }

// DesiredBindings returns the role bindings the configuration declares,
// resolved against the role-definition IDs cached during reconciliation.
// Roles whose definition was never resolved are omitted; the verification
// probe only confirms what the run actually attempted.
func DesiredBindings(cfg *config.Config, state *provisioning.State) []azure.RoleBinding {
	bindings := make([]azure.RoleBinding, 0, len(cfg.Roles))
	for _, role := range cfg.Roles {
		defID, ok := state.RoleDefinitionIDs[role.Name]
		if !ok {
			continue
		}
		scope, err := cfg.ExpandScope(role.Scope)
		if err != nil {
			continue
		}
		bindings = append(bindings, azure.RoleBinding{
			RoleDefinitionID: defID,
			PrincipalID:      state.Principal.PrincipalID,
			Scope:            scope,
		})
	}
	return bindings
}

// Reconcile ensures target scopes exist (provisioning them if needed),
// resolves role definitions, lists the principal's current assignments,
// and creates the missing ones. Assignments whose target scope is
// unavailable are recorded as skipped; everything else is attempted
// independently.
func (r *Reconciler) Reconcile(ctx *provisioning.Context) error {
	missing, err := r.ensureTargets(ctx)
	if err != nil {
		return err
	}

	if err := ResolveDefinitions(ctx); err != nil {
		return err
	}

	principal := ctx.State.Principal
	subscriptionScope := "/subscriptions/" + ctx.Config.SubscriptionID

	existing, err := ctx.Cloud.ListRoleBindings(ctx, subscriptionScope, principal.PrincipalID)
	if err != nil {
		return fmt.Errorf("failed to list existing role bindings: %w", err)
	}

	tasks := make([]async.Task[provisioning.Result], 0, len(ctx.Config.Roles))
	for _, role := range ctx.Config.Roles {
		item := role.Name + "@" + role.Scope

		scope, err := ctx.Config.ExpandScope(role.Scope)
		if err != nil {
			return err
		}

		if missing.covers(parseScope(scope)) {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerRoles,
				Item:       item,
				Status:     provisioning.StatusSkipped,
				Reason:     ctx.State.SimulationReason,
			})
			continue
		}

		defID := ctx.State.RoleDefinitionIDs[role.Name]
		if hasBinding(existing, defID, scope) {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerRoles,
				Item:       item,
				Status:     provisioning.StatusAlreadyExists,
			})
			continue
		}

		tasks = append(tasks, async.Task[provisioning.Result]{
			Name: item,
			Func: r.createTask(ctx, azure.RoleBinding{
				RoleDefinitionID: defID,
				PrincipalID:      principal.PrincipalID,
				Scope:            scope,
			}, item),
		})
	}

	for _, result := range async.RunBounded(ctx, int64(ctx.Config.Parallelism), tasks) {
		if result.Skipped {
			r.record(ctx, provisioning.Result{
				Reconciler: provisioning.ReconcilerRoles,
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

// missingTargets tracks which fallback targets are unavailable after
// ensureTargets ran. Assignments scoped to them are skipped, not failed:
// creation was never attempted.
type missingTargets struct {
	resourceGroup bool
	workspace     bool
	// names of the configured targets, for scope matching
	resourceGroupName string
	workspaceName     string
}

func (m missingTargets) covers(t scopeTarget) bool {
	switch t.kind {
	case kindResourceGroup:
		return m.resourceGroup && strings.EqualFold(t.resourceGroup, m.resourceGroupName)
	case kindWorkspace:
		inGroup := m.resourceGroup && strings.EqualFold(t.resourceGroup, m.resourceGroupName)
		isTarget := m.workspace && strings.EqualFold(t.workspace, m.workspaceName)
		return inGroup || isTarget
	}
	return false
}

// ensureTargets makes sure the resource group and workspace referenced by
// the configured role scopes exist, provisioning them when absent. A
// provisioning failure flips the run into simulation mode rather than
// returning an error: the remaining scopes still get their assignments.
func (r *Reconciler) ensureTargets(ctx *provisioning.Context) (missingTargets, error) {
	missing := missingTargets{
		resourceGroupName: ctx.Config.ResourceGroup.Name,
		workspaceName:     ctx.Config.Workspace.Name,
	}

	needsGroup, needsWorkspace := false, false
	for _, role := range ctx.Config.Roles {
		scope, err := ctx.Config.ExpandScope(role.Scope)
		if err != nil {
			return missing, fmt.Errorf("invalid scope for role %q: %w", role.Name, err)
		}
		switch parseScope(scope).kind {
		case kindResourceGroup:
			needsGroup = true
		case kindWorkspace:
			needsGroup = true
			needsWorkspace = true
		}
	}
	if !needsGroup {
		return missing, nil
	}

	if ok := r.ensureResourceGroup(ctx); !ok {
		missing.resourceGroup = true
		missing.workspace = true
		return missing, nil
	}
	if needsWorkspace {
		if ok := r.ensureWorkspace(ctx); !ok {
			missing.workspace = true
		}
	}
	return missing, nil
}

func (r *Reconciler) ensureResourceGroup(ctx *provisioning.Context) bool {
	name := ctx.Config.ResourceGroup.Name

	exists, err := ctx.Cloud.ResourceGroupExists(ctx, name)
	if err != nil {
		r.simulate(ctx, fmt.Sprintf("resource group %s could not be checked: %v", name, err))
		return false
	}
	if exists {
		return true
	}

	outcome, err := ctx.Cloud.EnsureResourceGroup(ctx, name, ctx.Config.ResourceGroup.Location, resourceTags(ctx.Config))
	if !outcome.Success() {
		r.simulate(ctx, fmt.Sprintf("resource group %s could not be provisioned: %v", name, err))
		return false
	}

	ctx.State.ResourceGroupCreated = true
	r.recordResource(ctx, name)
	return true
}

func (r *Reconciler) ensureWorkspace(ctx *provisioning.Context) bool {
	cfg := ctx.Config
	name := cfg.Workspace.Name

	exists, err := ctx.Cloud.WorkspaceExists(ctx, cfg.ResourceGroup.Name, name)
	if err != nil {
		r.simulate(ctx, fmt.Sprintf("workspace %s could not be checked: %v", name, err))
		return false
	}
	if exists {
		return true
	}

	outcome, err := ctx.Cloud.EnsureWorkspace(ctx, azure.WorkspaceSpec{
		ResourceGroup:         cfg.ResourceGroup.Name,
		Name:                  name,
		Location:              cfg.ResourceGroup.Location,
		FriendlyName:          cfg.Workspace.FriendlyName,
		StorageAccountID:      cfg.Workspace.StorageAccountID,
		KeyVaultID:            cfg.Workspace.KeyVaultID,
		ApplicationInsightsID: cfg.Workspace.ApplicationInsightsID,
		Tags:                  resourceTags(cfg),
	})
	if !outcome.Success() {
		r.simulate(ctx, fmt.Sprintf("workspace %s could not be provisioned: %v", name, err))
		return false
	}

	ctx.State.WorkspaceCreated = true
	r.recordResource(ctx, name)
	return true
}

func resourceTags(cfg *config.Config) map[string]string {
	return map[string]string{
		"environment": cfg.Environment,
		"managed-by":  "azbind",
		"repository":  cfg.Repository.Slug(),
	}
}

// simulate flips the run into simulation mode. The first trigger sets the
// reason; later triggers only emit their event.
func (r *Reconciler) simulate(ctx *provisioning.Context, reason string) {
	if !ctx.State.SimulationMode {
		ctx.State.SimulationMode = true
		ctx.State.SimulationReason = reason
	}
	ctx.Observer.Event(provisioning.Event{
		Type:    provisioning.EventSimulationMode,
		Phase:   r.Name(),
		Message: reason,
	})
}

// ResolveDefinitions resolves the role definition ID of every configured
// role and caches it in the run state. Read-only: probe-only runs call it
// too.
func ResolveDefinitions(ctx *provisioning.Context) error {
	subscriptionScope := "/subscriptions/" + ctx.Config.SubscriptionID
	for _, role := range ctx.Config.Roles {
		if _, ok := ctx.State.RoleDefinitionIDs[role.Name]; ok {
			continue
		}
		id, err := ctx.Cloud.LookupRoleDefinition(ctx, subscriptionScope, role.Name)
		if err != nil {
			return fmt.Errorf("failed to resolve role definition %q: %w", role.Name, err)
		}
		ctx.State.RoleDefinitionIDs[role.Name] = id
	}
	return nil
}

func hasBinding(existing []azure.RoleBinding, roleDefinitionID, scope string) bool {
	for _, b := range existing {
		if strings.EqualFold(b.RoleDefinitionID, roleDefinitionID) && strings.EqualFold(b.Scope, scope) {
			return true
		}
	}
	return false
}

func (r *Reconciler) createTask(ctx *provisioning.Context, binding azure.RoleBinding, item string) func(context.Context) provisioning.Result {
	return func(taskCtx context.Context) provisioning.Result {
		outcome, err := ctx.Cloud.CreateRoleBinding(taskCtx, binding)
		result := provisioning.Result{
			Reconciler: provisioning.ReconcilerRoles,
			Item:       item,
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

func (r *Reconciler) recordResource(ctx *provisioning.Context, name string) {
	ctx.Results.Add(provisioning.Result{
		Reconciler: provisioning.ReconcilerResource,
		Item:       name,
		Status:     provisioning.StatusCreated,
	})
	ctx.Observer.Event(provisioning.Event{
		Type:  provisioning.EventResourceCreated,
		Phase: r.Name(),
		Item:  name,
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
