// Package provisioning provides shared types, interfaces, and orchestration
// for the binding reconciliation pipeline.
//
// # Subpackages
//
//   - identity/ — deployment principal resolution
//   - federation/ — federated trust binding reconciliation
//   - roles/ — role assignment reconciliation with resource fallback
//   - verify/ — post-reconciliation verification probe
//
// # Core types
//
// Context carries configuration, run state, the control-plane client, and
// the observer. Phase defines a pipeline step with Name(), State(), and
// Reconcile() methods. State accumulates results as the run advances
// through the fixed state machine: INIT → RESOLVE_IDENTITY →
// RECONCILE_TRUST → RECONCILE_ROLES → VERIFY → REPORT, ending DONE or
// DEGRADED. Nothing is persisted across runs; every invocation re-derives
// current bindings by listing them.
package provisioning
