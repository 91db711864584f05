package provisioning

import (
	"context"

	"github.com/imamik/azbind/internal/config"
	"github.com/imamik/azbind/internal/platform/azure"
)

// Context wraps all dependencies and state needed for a pipeline phase.
// It is constructed once at INIT and threaded through every call; nothing
// about the run is kept in ambient global state.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Cloud    azure.ControlPlane
	Observer Observer
	Timeouts *config.Timeouts
	Results  *ResultSet
}

// NewContext creates a new pipeline context.
func NewContext(ctx context.Context, cfg *config.Config, cloud azure.ControlPlane) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Cloud:    cloud,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
		Results:  NewResultSet(),
	}
}
