package destroy

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/provisioning"
)

const phase = "destroy"

// Options control optional teardown steps.
type Options struct {
	// PurgeVault purges the soft-deleted key vault so its name can be reused.
	PurgeVault bool
}

// Provisioner destroys one lab.
type Provisioner struct {
	Record  *labstate.Record
	Store   labstate.Store
	Options Options
}

// NewProvisioner creates a destroy provisioner for record.
func NewProvisioner(record *labstate.Record, store labstate.Store, opts Options) *Provisioner {
	return &Provisioner{Record: record, Store: store, Options: opts}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Params returns the parameter set a destroy context runs with. Only the
// identifying fields are known once a lab is deployed.
func Params(r *labstate.Record, stateDir string) config.Params {
	return config.Params{
		Suffix:         r.Suffix,
		SubscriptionID: r.SubscriptionID,
		Location:       r.Location,
		StateDir:       stateDir,
	}
}

// Provision implements the provisioning.Phase interface. A resource group
// that cannot be deleted aborts the teardown; subscription-scoped leftovers
// are reported as warnings and keep the local record in place.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	r := p.Record
	ctx.Observer.Printf("[%s] Destroying lab %s in subscription %s", phase, r.Suffix, r.SubscriptionID)

	if err := p.deleteResourceGroup(ctx); err != nil {
		return err
	}

	if r.PolicyInitiative != "" {
		p.deleteNamed(ctx, "policySetDefinition", r.PolicyInitiative, ctx.Azure.DeletePolicySetDefinition)
	}
	for _, name := range r.PolicyDefinitions {
		p.deleteNamed(ctx, "policyDefinition", name, ctx.Azure.DeletePolicyDefinition)
	}
	if r.ActivityLogSetting != "" {
		p.deleteNamed(ctx, "diagnosticSetting", r.ActivityLogSetting, ctx.Azure.DeleteSubscriptionDiagnosticSetting)
	}
	if p.Options.PurgeVault && r.KeyVaultName != "" {
		p.deleteNamed(ctx, "deletedVault", r.KeyVaultName, func(c context.Context, name string) error {
			return ctx.Azure.PurgeDeletedVault(c, name, r.Location)
		})
	}

	if len(r.DefenderPlans) > 0 {
		ctx.Observer.Printf("[%s] Defender plans %s stay on the Standard tier. Reset them with: %s",
			phase, strings.Join(r.DefenderPlans, ", "), DefenderResetCommand(r.DefenderPlans))
	}

	if ctx.State.Degraded() {
		ctx.Observer.Printf("[%s] Lab record kept in %s; run destroy again to retry the remaining cleanup",
			phase, ctx.Params.LabDir())
		return nil
	}
	if err := p.Store.Delete(r.Suffix); err != nil {
		ctx.State.Warn("failed to remove lab record: %v", err)
		return nil
	}
	ctx.Observer.Printf("[%s] Lab %s destroyed", phase, r.Suffix)
	return nil
}

func (p *Provisioner) deleteResourceGroup(ctx *provisioning.Context) error {
	rg := p.Record.ResourceGroup
	provisioning.LogResourceDeleting(ctx.Observer, phase, "resourceGroup", rg)

	err := ctx.Wait(fmt.Sprintf("Deleting resource group %s (this takes 10-20 minutes)", rg), func() error {
		deleteCtx, cancel := context.WithTimeout(ctx, ctx.Timeouts.Delete)
		defer cancel()
		return ctx.Azure.DeleteResourceGroup(deleteCtx, rg)
	})
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "resourceGroup", rg, err)
		return fmt.Errorf("failed to delete resource group %s: %w", rg, err)
	}
	provisioning.LogResourceDeleted(ctx.Observer, phase, "resourceGroup", rg)
	return nil
}

func (p *Provisioner) deleteNamed(ctx *provisioning.Context, kind, name string, del func(context.Context, string) error) {
	provisioning.LogResourceDeleting(ctx.Observer, phase, kind, name)
	if err := del(ctx, name); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, kind, name, err)
		ctx.State.Warn("failed to delete %s %s: %v", kind, name, err)
		return
	}
	provisioning.LogResourceDeleted(ctx.Observer, phase, kind, name)
}

// DefenderResetCommand returns the commands that move plans back to the
// free tier.
func DefenderResetCommand(plans []string) string {
	cmds := make([]string, 0, len(plans))
	for _, plan := range plans {
		cmds = append(cmds, "az security pricing create --name "+plan+" --tier free")
	}
	return strings.Join(cmds, " && ")
}
