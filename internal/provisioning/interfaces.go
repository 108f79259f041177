package provisioning

import "errors"

// ErrSkipped is returned (wrapped) by a phase that decided not to run.
var ErrSkipped = errors.New("stage skipped")

// Phase defines the interface for a pipeline stage.
type Phase interface {
	// Name returns the human-readable name of this stage.
	Name() string

	// Provision executes the stage. Errors classified fatal by
	// failure.Fatal abort the pipeline; any other error is recorded as a
	// warning and the pipeline continues.
	Provision(ctx *Context) error
}

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...any)
}

// PhaseFunc adapts a function to the Phase interface.
type PhaseFunc struct {
	PhaseName string
	Fn        func(*Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Provision implements Phase.
func (p PhaseFunc) Provision(ctx *Context) error { return p.Fn(ctx) }
