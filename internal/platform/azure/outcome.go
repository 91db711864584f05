package azure

// Outcome is the typed result of a control-plane write. Reconcilers branch
// on these variants instead of matching on error strings.
type Outcome string

const (
	// OutcomeCreated indicates the binding or resource was newly created.
	OutcomeCreated Outcome = "created"
	// OutcomeAlreadyExists indicates an identical binding or resource was
	// already present. Counted as success.
	OutcomeAlreadyExists Outcome = "already-exists"
	// OutcomeNotFound indicates the target scope or resource is absent.
	OutcomeNotFound Outcome = "not-found"
	// OutcomePermissionDenied indicates the caller lacks the role needed
	// for the write. Never retried.
	OutcomePermissionDenied Outcome = "permission-denied"
	// OutcomeTransient indicates a temporary control-plane failure
	// (throttling, 5xx). Retryable during verification only.
	OutcomeTransient Outcome = "transient"
	// OutcomeFailed covers everything else.
	OutcomeFailed Outcome = "failed"
)

// Success reports whether the outcome counts toward a healthy run.
func (o Outcome) Success() bool {
	return o == OutcomeCreated || o == OutcomeAlreadyExists
}
