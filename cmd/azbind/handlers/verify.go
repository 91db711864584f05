package handlers

import (
	"context"

	"github.com/imamik/azbind/internal/provisioning"
	"github.com/imamik/azbind/internal/provisioning/identity"
	"github.com/imamik/azbind/internal/provisioning/verify"
)

// Verify probes the declared bindings without reconciling anything.
// It resolves the principal and runs the verification probe; exits
// non-zero when any declared binding is missing.
func Verify(ctx context.Context, configPath string) error {
	return run(ctx, configPath, []provisioning.Phase{
		identity.NewResolver(),
		verify.NewProbe(),
	})
}
