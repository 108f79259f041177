package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/imamik/akslab/internal/failure"
)

// Stage outcomes recorded in metrics.
const (
	stageOK      = "ok"
	stageWarning = "warning"
	stageSkipped = "skipped"
	stageFailed  = "failed"
)

// RunPhases executes all stages sequentially. A fatal error (see
// failure.Fatal) stops the run and is returned; a non-fatal error is added
// to State.Warnings and the next stage starts. Cancellation of the run
// context is always fatal, whatever the stage made of it.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	defer func() { ctx.Metrics.Finish(time.Now()) }()

	for i, phase := range phases {
		phaseStart := time.Now()
		ctx.Observer.Section(fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases)))
		LogPhaseStart(ctx.Observer, phase.Name())

		warnings := len(ctx.State.Warnings)
		err := phase.Provision(ctx)
		elapsed := time.Since(phaseStart)

		if cerr := ctx.Err(); cerr != nil {
			ctx.Metrics.ObserveStage(phase.Name(), stageFailed, elapsed)
			LogPhaseFailed(ctx.Observer, phase.Name(), cerr)
			return fmt.Errorf("%s stage interrupted: %w", phase.Name(), cerr)
		}

		switch {
		case err == nil && len(ctx.State.Warnings) > warnings:
			ctx.Metrics.ObserveStage(phase.Name(), stageWarning, elapsed)
			LogPhaseWarning(ctx.Observer, phase.Name(), errors.New(ctx.State.Warnings[len(ctx.State.Warnings)-1]))
		case err == nil:
			ctx.Metrics.ObserveStage(phase.Name(), stageOK, elapsed)
			LogPhaseComplete(ctx.Observer, phase.Name(), elapsed)
		case errors.Is(err, ErrSkipped):
			ctx.Metrics.ObserveStage(phase.Name(), stageSkipped, elapsed)
			LogPhaseSkipped(ctx.Observer, phase.Name(), err)
		case failure.Fatal(err):
			ctx.Metrics.ObserveStage(phase.Name(), stageFailed, elapsed)
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s stage failed: %w", phase.Name(), err)
		default:
			ctx.State.Warn("%s: %v", phase.Name(), err)
			ctx.Metrics.ObserveStage(phase.Name(), stageWarning, elapsed)
			LogPhaseWarning(ctx.Observer, phase.Name(), err)
		}
	}

	ctx.Observer.Printf("Pipeline finished in %v", time.Since(start).Round(time.Second))
	return nil
}
