// Package metrics exposes Prometheus counters for reconciliation outcomes.
//
// The CLI is short-lived, so the counters are not scraped; they keep
// outcome accounting in one place and are asserted directly in tests
// via testutil.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReconcileOutcomes counts per-item reconciliation outcomes, labelled by
// reconciler (trust, roles, resource) and outcome status.
var ReconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "azbind",
	Name:      "reconcile_outcomes_total",
	Help:      "Reconciliation outcomes per reconciler and status.",
}, []string{"reconciler", "status"})

// VerificationAttempts counts probe attempts, labelled by result.
var VerificationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "azbind",
	Name:      "verification_attempts_total",
	Help:      "Verification probe attempts by result.",
}, []string{"result"})
