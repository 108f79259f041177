package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/util/naming"
)

// Deployment stage names, also used as ARM deployment name suffixes.
const (
	StageMain         = "main"
	StageSubscription = "subscription"
)

// ResourceGroupPhase creates the lab resource group and deploys the main
// template into it.
type ResourceGroupPhase struct {
	// TemplateFile replaces the generated template when set. It may be JSON
	// or YAML.
	TemplateFile string
}

// NewResourceGroupPhase creates the resource-group stage.
func NewResourceGroupPhase(templateFile string) *ResourceGroupPhase {
	return &ResourceGroupPhase{TemplateFile: templateFile}
}

// Name implements the provisioning.Phase interface.
func (p *ResourceGroupPhase) Name() string {
	return "deploy-rg"
}

// Provision implements the provisioning.Phase interface.
func (p *ResourceGroupPhase) Provision(ctx *provisioning.Context) error {
	params := ctx.Params
	rg := params.ResourceGroup()

	template, err := p.template()
	if err != nil {
		return err
	}

	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "resourceGroup", rg)
	if err := ctx.Azure.EnsureResourceGroup(ctx, rg, params.Location, params.Tags); err != nil {
		return fmt.Errorf("failed to create resource group %s: %w", rg, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "resourceGroup", rg,
		fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", params.SubscriptionID, rg))

	req := azure.DeploymentRequest{
		Name:       naming.Deployment(params.NamePrefix(), StageMain),
		Template:   template,
		Parameters: blueprint.ResourceGroupParameters(params),
		Tags:       params.Tags,
	}

	var d *azure.Deployment
	err = ctx.Wait(fmt.Sprintf("Deploying %s to %s (this takes 10-20 minutes)", req.Name, rg), func() error {
		var derr error
		d, derr = ctx.Azure.DeployToResourceGroup(ctx, rg, req)
		return derr
	})
	ctx.State.Deployment = d
	if err != nil || !d.Succeeded() {
		id := azure.ResourceGroupDeploymentID(params.SubscriptionID, rg, req.Name)
		return deploymentError(failure.ScopeResourceGroup, req.Name, id, d, err)
	}

	maps.Copy(ctx.State.Outputs, d.Outputs)
	ctx.Observer.Printf("Resource group deployment succeeded with %d outputs", len(d.Outputs))
	return nil
}

// template returns the template to submit.
func (p *ResourceGroupPhase) template() (any, error) {
	if p.TemplateFile == "" {
		t, err := blueprint.MainTemplate()
		if err != nil {
			return nil, fmt.Errorf("failed to build main template: %w", err)
		}
		return t, nil
	}

	data, err := os.ReadFile(p.TemplateFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, failure.MissingFile(p.TemplateFile, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", p.TemplateFile, err)
	}
	var t map[string]any
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", p.TemplateFile, err)
	}
	return t, nil
}

// deploymentError builds the typed failure for a deployment that errored
// or ended in a non-succeeded state. d may be nil.
func deploymentError(scope failure.Scope, name, id string, d *azure.Deployment, cause error) *failure.DeploymentError {
	e := &failure.DeploymentError{
		Scope:      scope,
		Deployment: name,
		PortalURL:  azure.PortalURL(id),
		Cause:      cause,
	}
	if d != nil {
		e.State = d.RawState
		if e.State == "" {
			e.State = string(d.State)
		}
		if d.PortalURL != "" {
			e.PortalURL = d.PortalURL
		}
	}
	return e
}
