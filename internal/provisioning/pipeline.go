package provisioning

import (
	"fmt"
	"time"
)

// Phase defines one step of the reconciliation pipeline.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// State returns the state-machine position the phase occupies.
	State() RunState

	// Reconcile executes the phase. A returned error is a hard failure
	// that aborts the run; per-item failures are recorded in the result
	// set instead and degrade the run without aborting it.
	Reconcile(ctx *Context) error
}

// Run executes all phases sequentially and returns the terminal state.
// A hard phase failure (unresolvable principal, unreachable control
// plane) aborts remaining phases and ends the run DEGRADED.
func (ctx *Context) Run(phases []Phase) (RunState, error) {
	start := time.Now()
	ctx.State.Phase = StateInit
	ctx.Observer.Printf("Starting reconciliation with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.State.Phase = phase.State()
		ctx.Observer.Event(Event{Type: EventPhaseStarted, Phase: phase.Name()})

		if err := phase.Reconcile(ctx); err != nil {
			ctx.Observer.Event(Event{Type: EventPhaseFailed, Phase: phase.Name(), Message: err.Error()})
			ctx.State.Phase = StateDegraded
			return StateDegraded, fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	final := ctx.State.Final(ctx.Results)
	ctx.State.Phase = final
	ctx.Observer.Printf("Reconciliation finished %s in %v", final, time.Since(start).Round(time.Millisecond))
	return final, nil
}
