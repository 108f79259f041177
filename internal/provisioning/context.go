package provisioning

import (
	"context"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/platform/azure"
)

// Context wraps all dependencies and state needed for a pipeline stage.
type Context struct {
	context.Context
	// Params is the validated parameter set. Stages never modify it.
	Params   config.Params
	State    *State
	Azure    azure.Client
	Observer Observer
	Timeouts *config.Timeouts
	// Metrics is optional; a nil value records nothing.
	Metrics *Metrics
	// Interactive enables spinners while blocking on Azure.
	Interactive bool
}

// NewContext creates a new pipeline context.
func NewContext(ctx context.Context, params config.Params, client azure.Client, observer Observer) *Context {
	if observer == nil {
		observer = NewConsoleObserver(nil, false)
	}
	return &Context{
		Context:  ctx,
		Params:   params,
		State:    NewState(),
		Azure:    client,
		Observer: observer,
		Timeouts: config.LoadTimeouts(),
	}
}

// Wait runs fn, animating a spinner with title when the context is
// interactive.
func (c *Context) Wait(title string, fn func() error) error {
	if !c.Interactive {
		c.Observer.Printf("%s", title)
		return fn()
	}
	return RunWithSpinner(c, title, fn)
}
