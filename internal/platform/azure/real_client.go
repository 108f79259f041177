package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/imamik/akslab/internal/config"
)

const diagnosticSettingsAPIVersion = "2021-05-01-preview"

// RealClient implements Client against Azure Resource Manager.
type RealClient struct {
	subscriptionID string
	timeouts       *config.Timeouts

	subscriptions *armsubscriptions.Client
	groups        *armresources.ResourceGroupsClient
	deployments   *armresources.DeploymentsClient
	resources     *armresources.Client
	policyDefs    *armpolicy.DefinitionsClient
	policySets    *armpolicy.SetDefinitionsClient
	vaults        *armkeyvault.VaultsClient
	clientOptions *arm.ClientOptions
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithClientOptions sets the ARM client options (cloud, transport, retries).
func WithClientOptions(o *arm.ClientOptions) ClientOption {
	return func(c *RealClient) {
		c.clientOptions = o
	}
}

// NewRealClient creates a client bound to one subscription.
func NewRealClient(subscriptionID string, cred azcore.TokenCredential, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{
		subscriptionID: subscriptionID,
		timeouts:       config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.subscriptions, err = armsubscriptions.NewClient(cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	resources, err := armresources.NewClientFactory(subscriptionID, cred, c.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create resources client: %w", err)
	}
	c.groups = resources.NewResourceGroupsClient()
	c.deployments = resources.NewDeploymentsClient()
	c.resources = resources.NewClient()

	policies, err := armpolicy.NewClientFactory(subscriptionID, cred, c.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy client: %w", err)
	}
	c.policyDefs = policies.NewDefinitionsClient()
	c.policySets = policies.NewSetDefinitionsClient()

	if c.vaults, err = armkeyvault.NewVaultsClient(subscriptionID, cred, c.clientOptions); err != nil {
		return nil, fmt.Errorf("failed to create key vault client: %w", err)
	}
	return c, nil
}

// SubscriptionID returns the subscription the client is bound to.
func (c *RealClient) SubscriptionID() string {
	return c.subscriptionID
}

// ListSubscriptions returns the enabled subscriptions visible to the caller.
func (c *RealClient) ListSubscriptions(ctx context.Context) ([]config.Subscription, error) {
	return listSubscriptions(ctx, c.subscriptions)
}

// SubscriptionLister lists subscriptions before one has been chosen.
type SubscriptionLister struct {
	client *armsubscriptions.Client
}

// NewSubscriptionLister creates a lister for the collector.
func NewSubscriptionLister(cred azcore.TokenCredential) (*SubscriptionLister, error) {
	client, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}
	return &SubscriptionLister{client: client}, nil
}

// ListSubscriptions returns the enabled subscriptions visible to the caller.
func (l *SubscriptionLister) ListSubscriptions(ctx context.Context) ([]config.Subscription, error) {
	return listSubscriptions(ctx, l.client)
}

func listSubscriptions(ctx context.Context, client *armsubscriptions.Client) ([]config.Subscription, error) {
	var subs []config.Subscription
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}
		for _, s := range page.Value {
			if s == nil || s.SubscriptionID == nil {
				continue
			}
			state := ""
			if s.State != nil {
				state = string(*s.State)
			}
			if state != "" && state != string(armsubscriptions.SubscriptionStateEnabled) {
				continue
			}
			subs = append(subs, config.Subscription{
				ID:    *s.SubscriptionID,
				Name:  stringValue(s.DisplayName),
				State: state,
			})
		}
	}
	return subs, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toTags(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		out[k] = to.Ptr(v)
	}
	return out
}

// EnsureResourceGroup creates or updates the resource group.
func (c *RealClient) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) error {
	_, err := c.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags:     toTags(tags),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to ensure resource group %s: %w", name, err)
	}
	return nil
}

// ResourceGroupExists reports whether the resource group exists.
func (c *RealClient) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.groups.CheckExistence(ctx, name, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check resource group %s: %w", name, err)
	}
	return resp.Success, nil
}

// DeleteResourceGroup deletes the resource group and everything in it.
func (c *RealClient) DeleteResourceGroup(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Delete)
	defer cancel()

	poller, err := c.groups.BeginDelete(ctx, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, c.pollOptions()); err != nil {
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}
	return nil
}

func (c *RealClient) pollOptions() *runtime.PollUntilDoneOptions {
	return &runtime.PollUntilDoneOptions{Frequency: c.timeouts.PollFrequency}
}

func deployment(req DeploymentRequest) armresources.Deployment {
	d := armresources.Deployment{
		Properties: &armresources.DeploymentProperties{
			Mode:       to.Ptr(armresources.DeploymentModeIncremental),
			Template:   req.Template,
			Parameters: req.Parameters,
		},
		Tags: toTags(req.Tags),
	}
	if req.Location != "" {
		d.Location = to.Ptr(req.Location)
	}
	return d
}

// DeployToResourceGroup submits a deployment and blocks until it is
// terminal. A deployment that ends in Failed is returned together with the
// polling error.
func (c *RealClient) DeployToResourceGroup(ctx context.Context, resourceGroup string, req DeploymentRequest) (*Deployment, error) {
	result := &Deployment{
		Name:  req.Name,
		ID:    ResourceGroupDeploymentID(c.subscriptionID, resourceGroup, req.Name),
		State: StateNotStarted,
	}
	result.PortalURL = PortalURL(result.ID)

	pollCtx, cancel := context.WithTimeout(ctx, c.timeouts.Deployment)
	defer cancel()

	poller, err := c.deployments.BeginCreateOrUpdate(pollCtx, resourceGroup, req.Name, deployment(req), nil)
	if err != nil {
		return result, fmt.Errorf("failed to submit deployment %s: %w", req.Name, err)
	}
	result.State = StateInProgress

	resp, err := poller.PollUntilDone(pollCtx, c.pollOptions())
	if err != nil {
		if got, getErr := c.deployments.Get(ctx, resourceGroup, req.Name, nil); getErr == nil {
			fill(result, &got.DeploymentExtended)
		}
		return result, fmt.Errorf("deployment %s did not succeed: %w", req.Name, err)
	}
	fill(result, &resp.DeploymentExtended)
	return result, nil
}

// DeployToSubscription submits a subscription-scope deployment and blocks
// until it is terminal.
func (c *RealClient) DeployToSubscription(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	result := &Deployment{
		Name:  req.Name,
		ID:    SubscriptionDeploymentID(c.subscriptionID, req.Name),
		State: StateNotStarted,
	}
	result.PortalURL = PortalURL(result.ID)

	pollCtx, cancel := context.WithTimeout(ctx, c.timeouts.SubscriptionDeployment)
	defer cancel()

	poller, err := c.deployments.BeginCreateOrUpdateAtSubscriptionScope(pollCtx, req.Name, deployment(req), nil)
	if err != nil {
		return result, fmt.Errorf("failed to submit subscription deployment %s: %w", req.Name, err)
	}
	result.State = StateInProgress

	resp, err := poller.PollUntilDone(pollCtx, c.pollOptions())
	if err != nil {
		if got, getErr := c.deployments.GetAtSubscriptionScope(ctx, req.Name, nil); getErr == nil {
			fill(result, &got.DeploymentExtended)
		}
		return result, fmt.Errorf("subscription deployment %s did not succeed: %w", req.Name, err)
	}
	fill(result, &resp.DeploymentExtended)
	return result, nil
}

func fill(d *Deployment, ext *armresources.DeploymentExtended) {
	if ext.ID != nil {
		d.ID = *ext.ID
		d.PortalURL = PortalURL(d.ID)
	}
	if ext.Properties == nil {
		return
	}
	if ext.Properties.ProvisioningState != nil {
		d.RawState = string(*ext.Properties.ProvisioningState)
		d.State = ParseProvisioningState(d.RawState)
	}
	d.Outputs = FlattenOutputs(ext.Properties.Outputs)
}

// DeletePolicySetDefinition deletes a subscription policy initiative.
func (c *RealClient) DeletePolicySetDefinition(ctx context.Context, name string) error {
	if _, err := c.policySets.Delete(ctx, name, nil); ignoreNotFound(err) != nil {
		return fmt.Errorf("failed to delete policy set definition %s: %w", name, err)
	}
	return nil
}

// DeletePolicyDefinition deletes a subscription policy definition.
func (c *RealClient) DeletePolicyDefinition(ctx context.Context, name string) error {
	if _, err := c.policyDefs.Delete(ctx, name, nil); ignoreNotFound(err) != nil {
		return fmt.Errorf("failed to delete policy definition %s: %w", name, err)
	}
	return nil
}

// DeleteSubscriptionDiagnosticSetting removes an activity log diagnostic setting.
func (c *RealClient) DeleteSubscriptionDiagnosticSetting(ctx context.Context, name string) error {
	id := fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Insights/diagnosticSettings/%s", c.subscriptionID, name)
	poller, err := c.resources.BeginDeleteByID(ctx, id, diagnosticSettingsAPIVersion, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete diagnostic setting %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, c.pollOptions()); ignoreNotFound(err) != nil {
		return fmt.Errorf("failed to delete diagnostic setting %s: %w", name, err)
	}
	return nil
}

// PurgeDeletedVault permanently removes a soft-deleted key vault so its name
// can be reused.
func (c *RealClient) PurgeDeletedVault(ctx context.Context, name, location string) error {
	if _, err := c.vaults.GetDeleted(ctx, name, location, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to look up deleted key vault %s: %w", name, err)
	}
	poller, err := c.vaults.BeginPurgeDeleted(ctx, name, location, nil)
	if err != nil {
		return fmt.Errorf("failed to purge key vault %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, c.pollOptions()); err != nil {
		return fmt.Errorf("failed to purge key vault %s: %w", name, err)
	}
	return nil
}
