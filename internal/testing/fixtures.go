package testing

import (
	"context"
	"errors"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/util/naming"
)

// ErrProvider is returned by fixtures that simulate a provider exception.
var ErrProvider = errors.New("simulated provider error")

// ResourceGroupOutputs returns the output map a succeeded resource-group
// deployment produces for prefix.
func ResourceGroupOutputs(prefix string) map[string]string {
	return map[string]string{
		blueprint.OutputClusterName:   naming.Cluster(prefix),
		blueprint.OutputClusterFqdn:   prefix + "-dns-1a2b3c.hcp.westeurope.azmk8s.io",
		blueprint.OutputOIDCIssuer:    "https://westeurope.oic.prod-aks.azure.com/tenant/guid/",
		blueprint.OutputWorkspaceName: naming.Workspace(prefix),
		blueprint.OutputWorkspaceID: "/subscriptions/" + SubscriptionID + "/resourceGroups/" + naming.ResourceGroup(Suffix) +
			"/providers/Microsoft.OperationalInsights/workspaces/" + naming.Workspace(prefix),
		blueprint.OutputRegistry:     naming.Registry(prefix) + ".azurecr.io",
		blueprint.OutputKeyVaultName: naming.KeyVault(prefix),
		blueprint.OutputKeyVaultURI:  "https://" + naming.KeyVault(prefix) + ".vault.azure.net/",
		blueprint.OutputInitiativeID: "/subscriptions/" + SubscriptionID +
			"/providers/Microsoft.Authorization/policySetDefinitions/" + naming.PolicyInitiative(prefix),
	}
}

// AzureFixture provides pre-configured mock Azure clients for common test scenarios.
type AzureFixture struct {
	mock *azure.MockClient
}

// NewAzureFixture creates a new fixture.
func NewAzureFixture() *AzureFixture {
	return &AzureFixture{
		mock: &azure.MockClient{Subscription: SubscriptionID},
	}
}

// Mock returns the underlying MockClient for custom configuration.
func (f *AzureFixture) Mock() *azure.MockClient {
	return f.mock
}

// SuccessfulDeployment configures both deployments to succeed, the
// resource-group one with the full output map.
func (f *AzureFixture) SuccessfulDeployment() *azure.MockClient {
	f.mock.ResourceGroupExistsFunc = func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}
	f.mock.DeployToResourceGroupFunc = func(_ context.Context, rg string, req azure.DeploymentRequest) (*azure.Deployment, error) {
		return deployment(azure.ResourceGroupDeploymentID(SubscriptionID, rg, req.Name), req.Name,
			azure.StateSucceeded, ResourceGroupOutputs(naming.NamePrefix(Suffix))), nil
	}
	f.mock.DeployToSubscriptionFunc = func(_ context.Context, req azure.DeploymentRequest) (*azure.Deployment, error) {
		return deployment(azure.SubscriptionDeploymentID(SubscriptionID, req.Name), req.Name,
			azure.StateSucceeded, map[string]string{}), nil
	}
	return f.mock
}

// FailedResourceGroupDeployment configures the resource-group deployment
// to end in Failed.
func (f *AzureFixture) FailedResourceGroupDeployment() *azure.MockClient {
	f.SuccessfulDeployment()
	f.mock.DeployToResourceGroupFunc = func(_ context.Context, rg string, req azure.DeploymentRequest) (*azure.Deployment, error) {
		d := deployment(azure.ResourceGroupDeploymentID(SubscriptionID, rg, req.Name), req.Name, azure.StateFailed, nil)
		return d, errors.New("InvalidTemplateDeployment: the template deployment failed")
	}
	return f.mock
}

// WithSubscriptionError configures the subscription deployment to fail
// with err before reaching a terminal state.
func (f *AzureFixture) WithSubscriptionError(err error) *azure.MockClient {
	f.mock.DeployToSubscriptionFunc = func(_ context.Context, _ azure.DeploymentRequest) (*azure.Deployment, error) {
		return nil, err
	}
	return f.mock
}

// WithoutOutputs configures the resource-group deployment to succeed with
// an empty output map.
func (f *AzureFixture) WithoutOutputs() *azure.MockClient {
	f.mock.DeployToResourceGroupFunc = func(_ context.Context, rg string, req azure.DeploymentRequest) (*azure.Deployment, error) {
		return deployment(azure.ResourceGroupDeploymentID(SubscriptionID, rg, req.Name), req.Name,
			azure.StateSucceeded, map[string]string{}), nil
	}
	return f.mock
}

func deployment(id, name string, state azure.ProvisioningState, outputs map[string]string) *azure.Deployment {
	return &azure.Deployment{
		Name:      name,
		ID:        id,
		State:     state,
		RawState:  string(state),
		Outputs:   outputs,
		PortalURL: azure.PortalURL(id),
	}
}
