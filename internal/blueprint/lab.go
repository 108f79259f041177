package blueprint

import (
	"github.com/imamik/akslab/internal/arm"
)

// Modules returns the lab modules in declaration order.
func Modules() []*Module {
	return []*Module{
		loggingModule(),
		networkingModule(),
		registryModule(),
		identityModule(),
		secretsModule(),

		networkBindingModule(),
		clusterModule(),
		registryPullModule(),

		diagnosticsModule(),
		workloadTelemetryModule(),
		sentinelModule(),

		policyDefinitionsModule(),
		policyAssignmentModule(),
	}
}

// MainOutput exposes a module output on the main template.
type MainOutput struct {
	Name   string
	Module string
	Output string
}

// MainOutputs are read by the report stage. Outputs of conditional modules
// inherit the module condition.
var MainOutputs = []MainOutput{
	{Name: "clusterName", Module: "cluster", Output: "clusterName"},
	{Name: "clusterFqdn", Module: "cluster", Output: "clusterFqdn"},
	{Name: "oidcIssuerUrl", Module: "cluster", Output: "oidcIssuerUrl"},
	{Name: "logAnalyticsWorkspaceName", Module: "logging", Output: "workspaceName"},
	{Name: "logAnalyticsWorkspaceId", Module: "logging", Output: "workspaceId"},
	{Name: "acrLoginServer", Module: "registry", Output: "loginServer"},
	{Name: "keyVaultName", Module: "secrets", Output: "keyVaultName"},
	{Name: "keyVaultUri", Module: "secrets", Output: "keyVaultUri"},
	{Name: "policyInitiativeId", Module: "policyDefinitions", Output: "initiativeId"},
}

// Output names the report and subscription stages rely on.
const (
	OutputClusterName   = "clusterName"
	OutputClusterFqdn   = "clusterFqdn"
	OutputWorkspaceID   = "logAnalyticsWorkspaceId"
	OutputWorkspaceName = "logAnalyticsWorkspaceName"
	OutputRegistry      = "acrLoginServer"
	OutputKeyVaultName  = "keyVaultName"
	OutputKeyVaultURI   = "keyVaultUri"
	OutputInitiativeID  = "policyInitiativeId"
	OutputOIDCIssuer    = "oidcIssuerUrl"
)

// Lab returns the validated lab graph.
func Lab() (*Graph, error) {
	return NewGraph(Modules()...)
}

// MainTemplate compiles the lab graph into the resource group template.
func MainTemplate() (*arm.Template, error) {
	g, err := Lab()
	if err != nil {
		return nil, err
	}
	return g.Compile(MainOutputs...)
}
