package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_Defaults(t *testing.T) {
	t.Parallel()
	m := &MockClient{Subscription: "sub"}
	ctx := context.Background()

	dep, err := m.DeployToResourceGroup(ctx, "rg", DeploymentRequest{Name: "main"})
	require.NoError(t, err)
	assert.True(t, dep.Succeeded())
	assert.Contains(t, dep.PortalURL, "portal.azure.com")

	exists, err := m.ResourceGroupExists(ctx, "rg")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, []string{"DeployToResourceGroup", "ResourceGroupExists"}, m.Calls)
	assert.True(t, m.Called("DeployToResourceGroup"))
	assert.False(t, m.Called("DeployToSubscription"))
}

func TestMockClient_CustomFunc(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	m := &MockClient{
		DeployToSubscriptionFunc: func(_ context.Context, req DeploymentRequest) (*Deployment, error) {
			assert.Equal(t, "westeurope", req.Location)
			return nil, boom
		},
	}

	_, err := m.DeployToSubscription(context.Background(), DeploymentRequest{Location: "westeurope"})
	assert.ErrorIs(t, err, boom)
}
