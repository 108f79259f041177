package azure

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// ProvisioningState is the coarse state of a deployment.
type ProvisioningState string

const (
	StateNotStarted ProvisioningState = "NotStarted"
	StateInProgress ProvisioningState = "InProgress"
	StateSucceeded  ProvisioningState = "Succeeded"
	StateFailed     ProvisioningState = "Failed"
)

// Terminal reports whether no further transition is expected.
func (s ProvisioningState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ParseProvisioningState maps an ARM provisioning state onto the four
// states the pipeline distinguishes.
func ParseProvisioningState(raw string) ProvisioningState {
	switch armresources.ProvisioningState(raw) {
	case "", armresources.ProvisioningStateNotSpecified:
		return StateNotStarted
	case armresources.ProvisioningStateSucceeded:
		return StateSucceeded
	case armresources.ProvisioningStateFailed,
		armresources.ProvisioningStateCanceled,
		armresources.ProvisioningStateDeleted:
		return StateFailed
	default:
		return StateInProgress
	}
}

// FlattenOutputs turns the ARM output object ({"name": {"type": ..., "value": ...}})
// into plain strings. Outputs with a null value are dropped.
func FlattenOutputs(raw any) map[string]string {
	out := map[string]string{}
	m, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for _, name := range slices.Sorted(maps.Keys(m)) {
		entry, ok := m[name].(map[string]any)
		if !ok {
			continue
		}
		switch v := entry["value"].(type) {
		case nil:
		case string:
			out[name] = v
		default:
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}

const portalDeploymentBlade = "https://portal.azure.com/#view/HubsExtension/DeploymentDetailsBlade/~/overview/id/"

// ResourceGroupDeploymentID returns the ARM id of a resource group deployment.
func ResourceGroupDeploymentID(subscriptionID, resourceGroup, name string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Resources/deployments/%s",
		subscriptionID, resourceGroup, name)
}

// SubscriptionDeploymentID returns the ARM id of a subscription deployment.
func SubscriptionDeploymentID(subscriptionID, name string) string {
	return fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Resources/deployments/%s", subscriptionID, name)
}

// PortalURL links to the deployment history entry of a deployment id.
func PortalURL(deploymentID string) string {
	return portalDeploymentBlade + url.PathEscape(strings.TrimSpace(deploymentID))
}
