package deploy

import (
	"fmt"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/util/naming"
)

// SubscriptionPhase deploys Defender pricing and activity log routing at
// subscription scope. It never returns a deployment failure; the result is
// stored in State.Subscription instead.
type SubscriptionPhase struct{}

// NewSubscriptionPhase creates the subscription stage.
func NewSubscriptionPhase() *SubscriptionPhase {
	return &SubscriptionPhase{}
}

// Name implements the provisioning.Phase interface.
func (p *SubscriptionPhase) Name() string {
	return "deploy-sub"
}

// Provision implements the provisioning.Phase interface.
func (p *SubscriptionPhase) Provision(ctx *provisioning.Context) error {
	params := ctx.Params

	if !params.RunsSubscriptionStage() {
		const reason = "Defender and activity log routing are disabled"
		ctx.State.Subscription = provisioning.SubscriptionSkipped(reason)
		return fmt.Errorf("%w: %s", provisioning.ErrSkipped, reason)
	}

	workspaceID := ctx.State.Outputs[blueprint.OutputWorkspaceID]
	if workspaceID == "" && params.RouteActivityLog {
		reason := fmt.Sprintf("output %s missing from the resource group deployment", blueprint.OutputWorkspaceID)
		ctx.State.Subscription = provisioning.SubscriptionWarning(reason, nil)
		ctx.State.Warn("subscription settings not applied: %s", reason)
		return nil
	}

	req := azure.DeploymentRequest{
		Name:       naming.Deployment(params.NamePrefix(), StageSubscription),
		Template:   blueprint.SubscriptionTemplate(),
		Parameters: blueprint.SubscriptionParameters(params, workspaceID),
		Location:   params.Location,
		Tags:       params.Tags,
	}

	var d *azure.Deployment
	err := ctx.Wait("Applying subscription settings", func() error {
		var derr error
		d, derr = ctx.Azure.DeployToSubscription(ctx, req)
		return derr
	})
	if err != nil || !d.Succeeded() {
		id := azure.SubscriptionDeploymentID(params.SubscriptionID, req.Name)
		depErr := deploymentError(failure.ScopeSubscription, req.Name, id, d, err)
		ctx.State.Subscription = provisioning.SubscriptionWarning(depErr.Error(), d)
		ctx.State.Warn("subscription settings not applied: %v", depErr)
		return nil
	}

	ctx.State.Subscription = provisioning.SubscriptionOK(d)
	ctx.Observer.Printf("Subscription settings applied (Defender: %t, activity log: %t)",
		params.EnableDefender, params.RouteActivityLog)
	return nil
}
