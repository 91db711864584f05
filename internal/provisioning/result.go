package provisioning

import (
	"sync"

	"github.com/imamik/azbind/internal/metrics"
	"github.com/imamik/azbind/internal/platform/azure"
)

// Reconciler names used in results and metrics labels.
const (
	ReconcilerTrust    = "trust"
	ReconcilerRoles    = "roles"
	ReconcilerResource = "resource"
)

// Status classifies one reconciled item.
type Status string

const (
	// StatusCreated means the item was newly created this run.
	StatusCreated Status = "created"
	// StatusAlreadyExists means an identical item was already present.
	StatusAlreadyExists Status = "already-exists"
	// StatusFailed means creation was attempted and failed.
	StatusFailed Status = "failed"
	// StatusSkipped means the item was never attempted: its target scope
	// is unavailable (simulation mode) or the run was cancelled.
	StatusSkipped Status = "skipped"
)

// StatusFromOutcome maps a control-plane outcome to an item status.
func StatusFromOutcome(o azure.Outcome) Status {
	switch o {
	case azure.OutcomeCreated:
		return StatusCreated
	case azure.OutcomeAlreadyExists:
		return StatusAlreadyExists
	default:
		return StatusFailed
	}
}

// Result records the outcome of one reconciled item.
type Result struct {
	Reconciler string
	Item       string
	Status     Status
	Reason     string
}

// Counts aggregates per-status totals for one reconciler.
type Counts struct {
	Created       int
	AlreadyExists int
	Failed        int
	Skipped       int
}

// Total returns the number of classified items.
func (c Counts) Total() int {
	return c.Created + c.AlreadyExists + c.Failed + c.Skipped
}

// ResultSet is the run-scoped result list. Batch items reconcile
// concurrently, so appends are serialized. Never persisted across runs.
type ResultSet struct {
	mu      sync.Mutex
	results []Result
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Add appends a result and bumps the outcome counter.
func (s *ResultSet) Add(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()

	metrics.ReconcileOutcomes.WithLabelValues(r.Reconciler, string(r.Status)).Inc()
}

// All returns a copy of the recorded results in insertion order.
func (s *ResultSet) All() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// ByReconciler returns the results recorded by one reconciler.
func (s *ResultSet) ByReconciler(name string) []Result {
	var out []Result
	for _, r := range s.All() {
		if r.Reconciler == name {
			out = append(out, r)
		}
	}
	return out
}

// CountsFor aggregates totals for one reconciler.
func (s *ResultSet) CountsFor(name string) Counts {
	var c Counts
	for _, r := range s.ByReconciler(name) {
		switch r.Status {
		case StatusCreated:
			c.Created++
		case StatusAlreadyExists:
			c.AlreadyExists++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// HasFailures reports whether any required item failed or was skipped.
func (s *ResultSet) HasFailures() bool {
	for _, r := range s.All() {
		if r.Status == StatusFailed || r.Status == StatusSkipped {
			return true
		}
	}
	return false
}
