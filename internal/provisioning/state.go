package provisioning

import "github.com/imamik/azbind/internal/platform/azure"

// RunState is a position in the run state machine.
type RunState string

const (
	// StateInit is the initial state before any phase has run.
	StateInit RunState = "INIT"
	// StateResolveIdentity is active while the principal is being located.
	StateResolveIdentity RunState = "RESOLVE_IDENTITY"
	// StateReconcileTrust is active while trust bindings are reconciled.
	StateReconcileTrust RunState = "RECONCILE_TRUST"
	// StateReconcileRoles is active while role bindings are reconciled.
	StateReconcileRoles RunState = "RECONCILE_ROLES"
	// StateVerify is active during the verification probe.
	StateVerify RunState = "VERIFY"
	// StateDone is the terminal state of a fully healthy run.
	StateDone RunState = "DONE"
	// StateDegraded is the terminal state when any required binding could
	// not be created or confirmed. The run never self-retries past it;
	// the operator re-invokes.
	StateDegraded RunState = "DEGRADED"
)

// Terminal reports whether the state ends the run.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateDegraded
}

// VerificationStatus is the probe outcome.
type VerificationStatus string

const (
	// VerificationPending means the probe has not run yet.
	VerificationPending VerificationStatus = "pending"
	// VerificationPassed means the handshake and target read succeeded
	// after all declared bindings were observed.
	VerificationPassed VerificationStatus = "passed"
	// VerificationFailed means retries were exhausted without success.
	VerificationFailed VerificationStatus = "failed"
	// VerificationSkipped means the probe was not applicable, e.g. the
	// run fell back to simulation mode.
	VerificationSkipped VerificationStatus = "skipped"
)

// State holds the shared results of pipeline phases. It is progressively
// populated as each phase completes and read by subsequent phases and the
// reporter. Discovered identifiers live here for the duration of one run
// only; nothing is ambient or global.
type State struct {
	// Phase is the current state-machine position.
	Phase RunState

	// Principal is the resolved deployment principal. Read-only once the
	// resolver has populated it.
	Principal azure.PrincipalRef

	// RoleDefinitionIDs caches role-name → role-definition-ID lookups
	// within this run.
	RoleDefinitionIDs map[string]string

	// ResourceGroupCreated and WorkspaceCreated record fallback
	// provisioning so the report can call them out.
	ResourceGroupCreated bool
	WorkspaceCreated     bool

	// SimulationMode is set when a required target resource could not be
	// provisioned; affected bindings are skipped and the run ends
	// DEGRADED with an explicit notice.
	SimulationMode   bool
	SimulationReason string

	// Verification carries the probe outcome and diagnostics.
	Verification       VerificationStatus
	VerificationDetail string

	// ObservedTrust and ObservedRoles are the probe's diagnostic dump of
	// currently visible bindings.
	ObservedTrust []azure.TrustBinding
	ObservedRoles []azure.RoleBinding
}

// NewState creates the initial run state.
func NewState() *State {
	return &State{
		Phase:             StateInit,
		RoleDefinitionIDs: make(map[string]string),
		Verification:      VerificationPending,
	}
}

// Final computes the terminal state from the run's accumulated results.
// DEGRADED if and only if at least one required binding could not be
// created or confirmed.
func (s *State) Final(results *ResultSet) RunState {
	if results.HasFailures() || s.SimulationMode || s.Verification == VerificationFailed {
		return StateDegraded
	}
	return StateDone
}
