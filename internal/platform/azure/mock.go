package azure

import (
	"context"

	"github.com/imamik/akslab/internal/config"
)

// MockClient is a Client for tests. Every method delegates to its Func
// field when set and otherwise succeeds. Calls records the method names in
// invocation order.
type MockClient struct {
	Subscription string
	Calls        []string

	ListSubscriptionsFunc                   func(ctx context.Context) ([]config.Subscription, error)
	DeployToResourceGroupFunc               func(ctx context.Context, resourceGroup string, req DeploymentRequest) (*Deployment, error)
	DeployToSubscriptionFunc                func(ctx context.Context, req DeploymentRequest) (*Deployment, error)
	EnsureResourceGroupFunc                 func(ctx context.Context, name, location string, tags map[string]string) error
	ResourceGroupExistsFunc                 func(ctx context.Context, name string) (bool, error)
	DeleteResourceGroupFunc                 func(ctx context.Context, name string) error
	DeletePolicySetDefinitionFunc           func(ctx context.Context, name string) error
	DeletePolicyDefinitionFunc              func(ctx context.Context, name string) error
	DeleteSubscriptionDiagnosticSettingFunc func(ctx context.Context, name string) error
	PurgeDeletedVaultFunc                   func(ctx context.Context, name, location string) error
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) record(name string) {
	m.Calls = append(m.Calls, name)
}

// Called reports whether the named method was invoked.
func (m *MockClient) Called(name string) bool {
	for _, c := range m.Calls {
		if c == name {
			return true
		}
	}
	return false
}

// SubscriptionID returns the configured subscription.
func (m *MockClient) SubscriptionID() string {
	return m.Subscription
}

// ListSubscriptions mocks subscription listing.
func (m *MockClient) ListSubscriptions(ctx context.Context) ([]config.Subscription, error) {
	m.record("ListSubscriptions")
	if m.ListSubscriptionsFunc != nil {
		return m.ListSubscriptionsFunc(ctx)
	}
	return nil, nil
}

// DeployToResourceGroup mocks a resource group deployment. By default it
// succeeds with no outputs.
func (m *MockClient) DeployToResourceGroup(ctx context.Context, resourceGroup string, req DeploymentRequest) (*Deployment, error) {
	m.record("DeployToResourceGroup")
	if m.DeployToResourceGroupFunc != nil {
		return m.DeployToResourceGroupFunc(ctx, resourceGroup, req)
	}
	id := ResourceGroupDeploymentID(m.Subscription, resourceGroup, req.Name)
	return &Deployment{Name: req.Name, ID: id, State: StateSucceeded, Outputs: map[string]string{}, PortalURL: PortalURL(id)}, nil
}

// DeployToSubscription mocks a subscription deployment.
func (m *MockClient) DeployToSubscription(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	m.record("DeployToSubscription")
	if m.DeployToSubscriptionFunc != nil {
		return m.DeployToSubscriptionFunc(ctx, req)
	}
	id := SubscriptionDeploymentID(m.Subscription, req.Name)
	return &Deployment{Name: req.Name, ID: id, State: StateSucceeded, Outputs: map[string]string{}, PortalURL: PortalURL(id)}, nil
}

// EnsureResourceGroup mocks resource group creation.
func (m *MockClient) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) error {
	m.record("EnsureResourceGroup")
	if m.EnsureResourceGroupFunc != nil {
		return m.EnsureResourceGroupFunc(ctx, name, location, tags)
	}
	return nil
}

// ResourceGroupExists mocks the existence check. It reports true by default.
func (m *MockClient) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	m.record("ResourceGroupExists")
	if m.ResourceGroupExistsFunc != nil {
		return m.ResourceGroupExistsFunc(ctx, name)
	}
	return true, nil
}

// DeleteResourceGroup mocks resource group deletion.
func (m *MockClient) DeleteResourceGroup(ctx context.Context, name string) error {
	m.record("DeleteResourceGroup")
	if m.DeleteResourceGroupFunc != nil {
		return m.DeleteResourceGroupFunc(ctx, name)
	}
	return nil
}

// DeletePolicySetDefinition mocks initiative deletion.
func (m *MockClient) DeletePolicySetDefinition(ctx context.Context, name string) error {
	m.record("DeletePolicySetDefinition")
	if m.DeletePolicySetDefinitionFunc != nil {
		return m.DeletePolicySetDefinitionFunc(ctx, name)
	}
	return nil
}

// DeletePolicyDefinition mocks definition deletion.
func (m *MockClient) DeletePolicyDefinition(ctx context.Context, name string) error {
	m.record("DeletePolicyDefinition")
	if m.DeletePolicyDefinitionFunc != nil {
		return m.DeletePolicyDefinitionFunc(ctx, name)
	}
	return nil
}

// DeleteSubscriptionDiagnosticSetting mocks diagnostic setting deletion.
func (m *MockClient) DeleteSubscriptionDiagnosticSetting(ctx context.Context, name string) error {
	m.record("DeleteSubscriptionDiagnosticSetting")
	if m.DeleteSubscriptionDiagnosticSettingFunc != nil {
		return m.DeleteSubscriptionDiagnosticSettingFunc(ctx, name)
	}
	return nil
}

// PurgeDeletedVault mocks the key vault purge.
func (m *MockClient) PurgeDeletedVault(ctx context.Context, name, location string) error {
	m.record("PurgeDeletedVault")
	if m.PurgeDeletedVaultFunc != nil {
		return m.PurgeDeletedVaultFunc(ctx, name, location)
	}
	return nil
}
