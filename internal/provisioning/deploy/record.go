package deploy

import (
	"fmt"
	"maps"
	"time"

	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/provisioning"
)

// RecordPhase writes the lab record before anything is created in Azure,
// so a failed run can still be destroyed.
type RecordPhase struct {
	Store labstate.Store
	Now   func() time.Time

	record *labstate.Record
}

// NewRecordPhase creates the record stage.
func NewRecordPhase(store labstate.Store) *RecordPhase {
	return &RecordPhase{Store: store, Now: time.Now}
}

// Name implements the provisioning.Phase interface.
func (p *RecordPhase) Name() string {
	return "record"
}

// Provision implements the provisioning.Phase interface.
func (p *RecordPhase) Provision(ctx *provisioning.Context) error {
	p.record = labstate.FromParams(ctx.Params, p.Now())
	if err := p.Store.Save(p.record, p.Now()); err != nil {
		return err
	}
	ctx.Observer.Printf("Lab record written to %s", ctx.Params.LabDir())
	return nil
}

// Finalize stores the outcome of the run. It is a no-op when the record
// stage never ran.
func (p *RecordPhase) Finalize(ctx *provisioning.Context, runErr error) error {
	if p.record == nil {
		return nil
	}
	switch {
	case runErr != nil:
		p.record.Status = labstate.StatusFailed
	case ctx.State.Degraded():
		p.record.Status = labstate.StatusDegraded
	default:
		p.record.Status = labstate.StatusDeployed
	}
	if len(ctx.State.Outputs) > 0 {
		p.record.Outputs = maps.Clone(ctx.State.Outputs)
	}
	if err := p.Store.Save(p.record, p.Now()); err != nil {
		return fmt.Errorf("failed to update lab record: %w", err)
	}
	return nil
}
