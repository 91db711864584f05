package roles

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/azbind/internal/platform/azure"
	"github.com/imamik/azbind/internal/provisioning"
	azbindtesting "github.com/imamik/azbind/internal/testing"
)

func newTestContext(t *testing.T, cloud azure.ControlPlane) *provisioning.Context {
	t.Helper()
	pctx := provisioning.NewContext(context.Background(), azbindtesting.TestConfig(), cloud)
	pctx.Observer = provisioning.NopObserver{}
	pctx.State.Principal = azbindtesting.TestPrincipal()
	return pctx
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		name  string
		scope string
		want  scopeTarget
	}{
		{
			name:  "subscription",
			scope: "/subscriptions/sub",
			want:  scopeTarget{kind: kindSubscription},
		},
		{
			name:  "resource group",
			scope: "/subscriptions/sub/resourceGroups/ml-rg",
			want:  scopeTarget{kind: kindResourceGroup, resourceGroup: "ml-rg"},
		},
		{
			name:  "workspace",
			scope: "/subscriptions/sub/resourceGroups/ml-rg/providers/Microsoft.MachineLearningServices/workspaces/ml-workspace",
			want:  scopeTarget{kind: kindWorkspace, resourceGroup: "ml-rg", workspace: "ml-workspace"},
		},
		{
			name:  "foreign provider is external",
			scope: "/subscriptions/sub/resourceGroups/other/providers/Microsoft.Storage/storageAccounts/acct",
			want:  scopeTarget{kind: kindExternal, resourceGroup: "other"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseScope(tt.scope))
		})
	}
}

func TestReconcile_CreatesAllMissing(t *testing.T) {
	var mu sync.Mutex
	var created []azure.RoleBinding
	cloud := &azbindtesting.FakeControlPlane{
		CreateRoleBindingFunc: func(_ context.Context, binding azure.RoleBinding) (azure.Outcome, error) {
			mu.Lock()
			created = append(created, binding)
			mu.Unlock()
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))

	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Equal(t, 3, counts.Created)
	assert.Zero(t, counts.Failed)
	require.Len(t, created, 3)
	for _, b := range created {
		assert.Equal(t, azbindtesting.TestPrincipal().PrincipalID, b.PrincipalID)
		assert.NotEmpty(t, b.RoleDefinitionID)
		assert.NotEmpty(t, b.Scope)
	}
}

func TestReconcile_ExistingAssignmentsAreNoOps(t *testing.T) {
	pinned := newTestContext(t, &azbindtesting.FakeControlPlane{})
	cfg := pinned.Config

	// Pre-populate the control plane with every desired assignment.
	defID := func(name string) string {
		return "/subscriptions/sub/providers/Microsoft.Authorization/roleDefinitions/" + name
	}
	var existing []azure.RoleBinding
	for _, role := range cfg.Roles {
		scope, err := cfg.ExpandScope(role.Scope)
		require.NoError(t, err)
		existing = append(existing, azure.RoleBinding{
			RoleDefinitionID: defID(role.Name),
			PrincipalID:      azbindtesting.TestPrincipal().PrincipalID,
			Scope:            scope,
		})
	}

	cloud := &azbindtesting.FakeControlPlane{
		ListRoleBindingsFunc: func(context.Context, string, string) ([]azure.RoleBinding, error) {
			return existing, nil
		},
		CreateRoleBindingFunc: func(context.Context, azure.RoleBinding) (azure.Outcome, error) {
			t.Error("create must not be called when all assignments exist")
			return azure.OutcomeFailed, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Zero(t, counts.Created)
	assert.Equal(t, 3, counts.AlreadyExists)
}

func TestReconcile_ScopeComparisonIsCaseInsensitive(t *testing.T) {
	pctx := newTestContext(t, nil)
	cfg := pctx.Config
	scope, err := cfg.ExpandScope("resource-group")
	require.NoError(t, err)

	existing := []azure.RoleBinding{{
		RoleDefinitionID: "/SUBSCRIPTIONS/sub/providers/Microsoft.Authorization/roleDefinitions/Contributor",
		Scope:            "/subscriptions/" + cfg.SubscriptionID + "/resourcegroups/ML-RG",
	}}
	assert.False(t, hasBinding(existing, "other", scope))
	assert.True(t, hasBinding(existing,
		"/subscriptions/sub/providers/Microsoft.Authorization/roleDefinitions/Contributor", scope))
}

func TestReconcile_ResourceGroupFallback(t *testing.T) {
	var createdGroup bool
	cloud := &azbindtesting.FakeControlPlane{
		ResourceGroupExistsFunc: func(context.Context, string) (bool, error) {
			return createdGroup, nil
		},
		EnsureResourceGroupFunc: func(_ context.Context, name, location string, tags map[string]string) (azure.Outcome, error) {
			createdGroup = true
			assert.Equal(t, "ml-rg", name)
			assert.Equal(t, "westeurope", location)
			assert.Equal(t, "azbind", tags["managed-by"])
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	assert.True(t, pctx.State.ResourceGroupCreated)
	assert.False(t, pctx.State.SimulationMode)

	resources := pctx.Results.CountsFor(provisioning.ReconcilerResource)
	assert.Equal(t, 1, resources.Created)
	assert.Equal(t, 3, pctx.Results.CountsFor(provisioning.ReconcilerRoles).Created)
}

func TestReconcile_WorkspaceFallback(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{
		WorkspaceExistsFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		EnsureWorkspaceFunc: func(_ context.Context, spec azure.WorkspaceSpec) (azure.Outcome, error) {
			assert.Equal(t, "ml-workspace", spec.Name)
			assert.Equal(t, "ml-rg", spec.ResourceGroup)
			assert.Equal(t, "westeurope", spec.Location)
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	assert.True(t, pctx.State.WorkspaceCreated)
	assert.False(t, pctx.State.ResourceGroupCreated, "existing group must not be re-created")
	assert.Equal(t, 3, pctx.Results.CountsFor(provisioning.ReconcilerRoles).Created)
}

func TestReconcile_GroupProvisionFailureDegradesToSimulation(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{
		ResourceGroupExistsFunc: func(context.Context, string) (bool, error) {
			return false, nil
		},
		EnsureResourceGroupFunc: func(context.Context, string, string, map[string]string) (azure.Outcome, error) {
			return azure.OutcomePermissionDenied, errors.New("authorization failed")
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	assert.True(t, pctx.State.SimulationMode)
	assert.Contains(t, pctx.State.SimulationReason, "ml-rg")

	// Group- and workspace-scoped assignments skip; the subscription
	// scope is unaffected and still gets its assignment.
	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Equal(t, 2, counts.Skipped)
	assert.Equal(t, 1, counts.Created)
	assert.True(t, pctx.Results.HasFailures())
}

func TestReconcile_WorkspaceProvisionFailureSkipsWorkspaceOnly(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{
		WorkspaceExistsFunc: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
		EnsureWorkspaceFunc: func(context.Context, azure.WorkspaceSpec) (azure.Outcome, error) {
			return azure.OutcomeFailed, errors.New("storage account required")
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	assert.True(t, pctx.State.SimulationMode)

	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Equal(t, 1, counts.Skipped)
	assert.Equal(t, 2, counts.Created)

	for _, r := range pctx.Results.ByReconciler(provisioning.ReconcilerRoles) {
		if r.Status == provisioning.StatusSkipped {
			assert.Equal(t, "AzureML Data Scientist@workspace", r.Item)
		}
	}
}

func TestReconcile_OneFailureDoesNotAbortBatch(t *testing.T) {
	denied := &azcore.ResponseError{StatusCode: http.StatusForbidden, ErrorCode: "AuthorizationFailed"}
	cloud := &azbindtesting.FakeControlPlane{
		CreateRoleBindingFunc: func(_ context.Context, binding azure.RoleBinding) (azure.Outcome, error) {
			if parseScope(binding.Scope).kind == kindSubscription {
				return azure.Classify(denied), denied
			}
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Equal(t, 2, counts.Created)
	assert.Equal(t, 1, counts.Failed)
}

func TestReconcile_DuplicateAssignmentCountsAsExists(t *testing.T) {
	conflict := &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "RoleAlreadyExists"}
	cloud := &azbindtesting.FakeControlPlane{
		CreateRoleBindingFunc: func(context.Context, azure.RoleBinding) (azure.Outcome, error) {
			return azure.Classify(conflict), conflict
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerRoles)
	assert.Equal(t, 3, counts.AlreadyExists)
	assert.Zero(t, counts.Failed)
}

func TestReconcile_DefinitionLookupFailureIsHard(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{
		LookupRoleDefinitionFunc: func(context.Context, string, string) (string, error) {
			return "", errors.New("role not found")
		},
	}
	pctx := newTestContext(t, cloud)

	err := NewReconciler().Reconcile(pctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve role definition")
}

func TestReconcile_CachesDefinitionLookups(t *testing.T) {
	var mu sync.Mutex
	lookups := map[string]int{}
	cloud := &azbindtesting.FakeControlPlane{
		LookupRoleDefinitionFunc: func(_ context.Context, _ string, roleName string) (string, error) {
			mu.Lock()
			lookups[roleName]++
			mu.Unlock()
			return "/defs/" + roleName, nil
		},
	}
	pctx := newTestContext(t, cloud)

	r := NewReconciler()
	require.NoError(t, r.Reconcile(pctx))
	require.NoError(t, r.Reconcile(pctx))

	for name, n := range lookups {
		assert.Equal(t, 1, n, "role %s resolved more than once per run state", name)
	}
}

func TestDesiredBindings(t *testing.T) {
	pctx := newTestContext(t, &azbindtesting.FakeControlPlane{})
	require.NoError(t, NewReconciler().Reconcile(pctx))

	bindings := DesiredBindings(pctx.Config, pctx.State)
	require.Len(t, bindings, 3)
	for _, b := range bindings {
		assert.Equal(t, pctx.State.Principal.PrincipalID, b.PrincipalID)
		assert.NotEmpty(t, b.RoleDefinitionID)
	}
}
