package azure

import (
	"context"

	"github.com/imamik/akslab/internal/config"
)

// DeploymentRequest is one template submission.
type DeploymentRequest struct {
	Name       string
	Template   any
	Parameters map[string]any
	// Location is required for subscription-scope deployments.
	Location string
	Tags     map[string]string
}

// Deployment is the terminal result of a submission.
type Deployment struct {
	Name      string
	ID        string
	State     ProvisioningState
	RawState  string
	Outputs   map[string]string
	PortalURL string
}

// Succeeded reports whether the deployment reached Succeeded.
func (d *Deployment) Succeeded() bool {
	return d != nil && d.State == StateSucceeded
}

// Deployer submits template deployments and blocks until they are terminal.
type Deployer interface {
	// DeployToResourceGroup returns the deployment even when it fails so the
	// caller can report its state and portal URL.
	DeployToResourceGroup(ctx context.Context, resourceGroup string, req DeploymentRequest) (*Deployment, error)
	DeployToSubscription(ctx context.Context, req DeploymentRequest) (*Deployment, error)
}

// ResourceGroupManager manages the lab resource group.
type ResourceGroupManager interface {
	EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) error
	ResourceGroupExists(ctx context.Context, name string) (bool, error)
	// DeleteResourceGroup is a no-op when the group does not exist.
	DeleteResourceGroup(ctx context.Context, name string) error
}

// Cleaner removes subscription-scoped objects that survive resource group
// deletion. Every method is a no-op when the object does not exist.
type Cleaner interface {
	DeletePolicySetDefinition(ctx context.Context, name string) error
	DeletePolicyDefinition(ctx context.Context, name string) error
	DeleteSubscriptionDiagnosticSetting(ctx context.Context, name string) error
	PurgeDeletedVault(ctx context.Context, name, location string) error
}

// Client combines every Azure operation a lab needs.
type Client interface {
	config.SubscriptionLister
	Deployer
	ResourceGroupManager
	Cleaner
	SubscriptionID() string
}
