package provisioning

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/imamik/azbind/internal/metrics"
	"github.com/imamik/azbind/internal/platform/azure"
)

func TestStatusFromOutcome(t *testing.T) {
	assert.Equal(t, StatusCreated, StatusFromOutcome(azure.OutcomeCreated))
	assert.Equal(t, StatusAlreadyExists, StatusFromOutcome(azure.OutcomeAlreadyExists))
	assert.Equal(t, StatusFailed, StatusFromOutcome(azure.OutcomeNotFound))
	assert.Equal(t, StatusFailed, StatusFromOutcome(azure.OutcomePermissionDenied))
	assert.Equal(t, StatusFailed, StatusFromOutcome(azure.OutcomeTransient))
	assert.Equal(t, StatusFailed, StatusFromOutcome(azure.OutcomeFailed))
}

func TestResultSet_CountsFor(t *testing.T) {
	set := NewResultSet()
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "a", Status: StatusCreated})
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "b", Status: StatusAlreadyExists})
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "c", Status: StatusAlreadyExists})
	set.Add(Result{Reconciler: ReconcilerRoles, Item: "d", Status: StatusFailed, Reason: "denied"})
	set.Add(Result{Reconciler: ReconcilerRoles, Item: "e", Status: StatusSkipped, Reason: "scope unavailable"})

	trust := set.CountsFor(ReconcilerTrust)
	assert.Equal(t, Counts{Created: 1, AlreadyExists: 2}, trust)
	assert.Equal(t, 3, trust.Total())

	roles := set.CountsFor(ReconcilerRoles)
	assert.Equal(t, Counts{Failed: 1, Skipped: 1}, roles)

	assert.Len(t, set.ByReconciler(ReconcilerTrust), 3)
	assert.True(t, set.HasFailures())
}

func TestResultSet_NoFailures(t *testing.T) {
	set := NewResultSet()
	assert.False(t, set.HasFailures())

	set.Add(Result{Reconciler: ReconcilerTrust, Item: "a", Status: StatusCreated})
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "b", Status: StatusAlreadyExists})
	assert.False(t, set.HasFailures())
}

func TestResultSet_AddBumpsOutcomeCounters(t *testing.T) {
	// Counters are process-global and cumulative, so assert deltas.
	created := metrics.ReconcileOutcomes.WithLabelValues(ReconcilerTrust, string(StatusCreated))
	failed := metrics.ReconcileOutcomes.WithLabelValues(ReconcilerRoles, string(StatusFailed))
	createdBefore := testutil.ToFloat64(created)
	failedBefore := testutil.ToFloat64(failed)

	set := NewResultSet()
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "a", Status: StatusCreated})
	set.Add(Result{Reconciler: ReconcilerTrust, Item: "b", Status: StatusCreated})
	set.Add(Result{Reconciler: ReconcilerRoles, Item: "c", Status: StatusFailed, Reason: "denied"})

	assert.Equal(t, 2.0, testutil.ToFloat64(created)-createdBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(failed)-failedBefore)
}

func TestResultSet_ConcurrentAppends(t *testing.T) {
	set := NewResultSet()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set.Add(Result{Reconciler: ReconcilerTrust, Item: "x", Status: StatusCreated})
		}()
	}
	wg.Wait()

	assert.Len(t, set.All(), 50)
}
