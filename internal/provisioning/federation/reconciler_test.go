package federation

import (
	"context"
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

func TestDesiredBindings(t *testing.T) {
	cfg := azbindtesting.TestConfig()
	bindings := DesiredBindings(cfg)
	require.Len(t, bindings, 6)

	subjects := make(map[string]bool)
	for _, b := range bindings {
		assert.Equal(t, cfg.Trust.Issuer, b.Issuer)
		assert.Equal(t, cfg.Trust.Audiences, b.Audiences)
		assert.NotEmpty(t, b.Name)
		assert.False(t, subjects[b.Subject], "subjects must be unique per principal")
		subjects[b.Subject] = true
	}
	assert.True(t, subjects["repo:acme/ml-health-check:pull_request"])
}

func TestReconcile_CreatesAllMissing(t *testing.T) {
	var mu sync.Mutex
	var created []string
	cloud := &azbindtesting.FakeControlPlane{
		CreateTrustBindingFunc: func(_ context.Context, _ azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error) {
			mu.Lock()
			created = append(created, binding.Name)
			mu.Unlock()
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))

	counts := pctx.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Equal(t, 6, counts.Created)
	assert.Zero(t, counts.AlreadyExists)
	assert.Zero(t, counts.Failed)
	assert.Len(t, created, 6)
}

func TestReconcile_SecondRunIsNoOp(t *testing.T) {
	// First run against an empty principal, second run against the
	// binding set the first run produced.
	var mu sync.Mutex
	var store []azure.TrustBinding
	cloud := &azbindtesting.FakeControlPlane{
		ListTrustBindingsFunc: func(context.Context, azure.PrincipalRef) ([]azure.TrustBinding, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]azure.TrustBinding(nil), store...), nil
		},
		CreateTrustBindingFunc: func(_ context.Context, _ azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error) {
			mu.Lock()
			store = append(store, binding)
			mu.Unlock()
			return azure.OutcomeCreated, nil
		},
	}

	first := newTestContext(t, cloud)
	require.NoError(t, NewReconciler().Reconcile(first))
	assert.Equal(t, 6, first.Results.CountsFor(provisioning.ReconcilerTrust).Created)

	second := newTestContext(t, cloud)
	require.NoError(t, NewReconciler().Reconcile(second))
	counts := second.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Zero(t, counts.Created)
	assert.Equal(t, 6, counts.AlreadyExists)
	assert.Len(t, store, 6, "second run must not create anything")
}

func TestReconcile_AllExistingReportsAlreadyExists(t *testing.T) {
	cfg := azbindtesting.TestConfig()
	cloud := &azbindtesting.FakeControlPlane{
		ListTrustBindingsFunc: func(context.Context, azure.PrincipalRef) ([]azure.TrustBinding, error) {
			return DesiredBindings(cfg), nil
		},
		CreateTrustBindingFunc: func(context.Context, azure.PrincipalRef, azure.TrustBinding) (azure.Outcome, error) {
			t.Error("create must not be called when all bindings exist")
			return azure.OutcomeFailed, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Zero(t, counts.Created)
	assert.Equal(t, 6, counts.AlreadyExists)
}

func TestReconcile_NameCollisionIsNeverUpserted(t *testing.T) {
	cfg := azbindtesting.TestConfig()
	foreign := azure.TrustBinding{
		Name:      "github-environment-staging",
		Issuer:    cfg.Trust.Issuer,
		Subject:   "repo:someone-else/other-repo:environment:staging",
		Audiences: cfg.Trust.Audiences,
	}
	cloud := &azbindtesting.FakeControlPlane{
		ListTrustBindingsFunc: func(context.Context, azure.PrincipalRef) ([]azure.TrustBinding, error) {
			return []azure.TrustBinding{foreign}, nil
		},
		CreateTrustBindingFunc: func(_ context.Context, _ azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error) {
			if binding.Name == foreign.Name {
				t.Error("create under a colliding name would replace the foreign credential")
			}
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Equal(t, 5, counts.Created)
	assert.Equal(t, 1, counts.Failed)

	for _, r := range pctx.Results.ByReconciler(provisioning.ReconcilerTrust) {
		if r.Status == provisioning.StatusFailed {
			assert.Equal(t, foreign.Name, r.Item)
			assert.Contains(t, r.Reason, "name collision")
			assert.Contains(t, r.Reason, foreign.Subject)
		}
	}
}

func TestReconcile_OneFailureDoesNotAbortBatch(t *testing.T) {
	denied := &azcore.ResponseError{StatusCode: http.StatusForbidden, ErrorCode: "AuthorizationFailed"}
	cloud := &azbindtesting.FakeControlPlane{
		CreateTrustBindingFunc: func(_ context.Context, _ azure.PrincipalRef, binding azure.TrustBinding) (azure.Outcome, error) {
			if binding.Name == "github-environment-staging" {
				return azure.Classify(denied), denied
			}
			return azure.OutcomeCreated, nil
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Equal(t, 5, counts.Created)
	assert.Equal(t, 1, counts.Failed)

	for _, r := range pctx.Results.ByReconciler(provisioning.ReconcilerTrust) {
		if r.Status == provisioning.StatusFailed {
			assert.Equal(t, "github-environment-staging", r.Item)
			assert.NotEmpty(t, r.Reason)
		}
	}
}

func TestReconcile_ConflictCountsAsExists(t *testing.T) {
	conflict := &azcore.ResponseError{StatusCode: http.StatusConflict, ErrorCode: "Conflict"}
	cloud := &azbindtesting.FakeControlPlane{
		CreateTrustBindingFunc: func(context.Context, azure.PrincipalRef, azure.TrustBinding) (azure.Outcome, error) {
			return azure.Classify(conflict), conflict
		},
	}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	counts := pctx.Results.CountsFor(provisioning.ReconcilerTrust)
	assert.Equal(t, 6, counts.AlreadyExists)
	assert.Zero(t, counts.Failed)
}

func TestReconcile_ListFailureIsHard(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{
		ListTrustBindingsFunc: func(context.Context, azure.PrincipalRef) ([]azure.TrustBinding, error) {
			return nil, &azcore.ResponseError{StatusCode: http.StatusBadGateway}
		},
	}
	pctx := newTestContext(t, cloud)

	err := NewReconciler().Reconcile(pctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list existing trust bindings")
}

func TestReconcile_EveryItemClassifiedBeforeReturn(t *testing.T) {
	cloud := &azbindtesting.FakeControlPlane{}
	pctx := newTestContext(t, cloud)

	require.NoError(t, NewReconciler().Reconcile(pctx))
	assert.Equal(t, len(DesiredBindings(pctx.Config)),
		pctx.Results.CountsFor(provisioning.ReconcilerTrust).Total())
}
