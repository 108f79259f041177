package blueprint

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v3"

	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/util/naming"
)

const (
	systemPoolName = "system"
	userPoolName   = "user"
)

// roleAssignment grants a built-in role to a service principal on the
// resource named by scope (in "<type>/<name>" form).
func roleAssignment(scope, principalID, roleID string) *arm.Resource {
	return &arm.Resource{
		Type:       "Microsoft.Authorization/roleAssignments",
		APIVersion: apiAuthorization,
		Name:       arm.Guid(scope, principalID, roleID),
		Scope:      scope,
		Properties: &armauthorization.RoleAssignmentProperties{
			PrincipalID:      to.Ptr(principalID),
			PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
			RoleDefinitionID: to.Ptr(arm.SubscriptionResourceID("Microsoft.Authorization/roleDefinitions", roleID)),
		},
	}
}

func networkBindingModule() *Module {
	return &Module{
		Name:  "networkBinding",
		Layer: Compute,
		Inputs: []Input{
			{Param: "vnetName", Module: "networking", Output: "vnetName"},
			{Param: "principalId", Module: "identity", Output: "principalId"},
		},
		Template: networkBindingTemplate,
	}
}

// networkBindingTemplate lets the cluster identity manage the node subnet.
func networkBindingTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, nil, "vnetName", "principalId")

	scope := arm.Concat("Microsoft.Network/virtualNetworks/", arm.Param("vnetName"))
	t.Resources = append(t.Resources, roleAssignment(scope, arm.Param("principalId"), roleNetworkContributor))
	return t
}

var clusterParams = []string{
	ParamNamePrefix,
	ParamLocation,
	ParamTags,
	ParamAdminGroupObjectID,
	ParamAuthorizedIPRange,
	ParamKubernetesVersion,
	ParamSystemNodeVMSize,
	ParamUserNodeVMSize,
	ParamEnableDefender,
	ParamEnableAzurePolicy,
	ParamSSHPublicKey,
}

func clusterModule() *Module {
	return &Module{
		Name:   "cluster",
		Layer:  Compute,
		Step:   1,
		Params: clusterParams,
		Inputs: []Input{
			{Param: "identityId", Module: "identity", Output: "identityId"},
			{Param: "nodeSubnetId", Module: "networking", Output: "nodeSubnetId"},
			{Param: "workspaceId", Module: "logging", Output: "workspaceId"},
		},
		After:    []string{"networkBinding"},
		Template: clusterTemplate,
	}
}

func agentPool(name, mode, vmSize string, count, maxCount int) map[string]any {
	return map[string]any{
		"name":              name,
		"mode":              mode,
		"vmSize":            vmSize,
		"count":             count,
		"minCount":          count,
		"maxCount":          maxCount,
		"enableAutoScaling": true,
		"osType":            "Linux",
		"osSKU":             "AzureLinux",
		"type":              "VirtualMachineScaleSets",
		"vnetSubnetID":      arm.Param("nodeSubnetId"),
	}
}

func clusterTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, clusterParams, "identityId", "nodeSubnetId", "workspaceId")

	name := prefixed(naming.ClusterSuffix)
	id := arm.ResourceID("Microsoft.ContainerService/managedClusters", name)

	system := agentPool(systemPoolName, "System", arm.Param(ParamSystemNodeVMSize), 1, 3)
	system["onlyCriticalAddonsEnabled"] = true
	user := agentPool(userPoolName, "User", arm.Param(ParamUserNodeVMSize), 1, 5)

	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.ContainerService/managedClusters",
		APIVersion: apiManagedClusters,
		Name:       name,
		Location:   arm.Param(ParamLocation),
		Tags:       arm.Param(ParamTags),
		SKU:        map[string]any{"name": "Base", "tier": "Standard"},
		Identity: map[string]any{
			"type": "UserAssigned",
			"userAssignedIdentities": map[string]any{
				arm.Param("identityId"): map[string]any{},
			},
		},
		Properties: map[string]any{
			"kubernetesVersion":    arm.Param(ParamKubernetesVersion),
			"dnsPrefix":            arm.Param(ParamNamePrefix),
			"enableRBAC":           true,
			"disableLocalAccounts": true,
			"aadProfile": map[string]any{
				"managed":             true,
				"enableAzureRBAC":     true,
				"adminGroupObjectIDs": []any{arm.Param(ParamAdminGroupObjectID)},
			},
			"apiServerAccessProfile": map[string]any{
				"authorizedIPRanges": []any{arm.Param(ParamAuthorizedIPRange)},
			},
			"agentPoolProfiles": []any{system, user},
			"linuxProfile": map[string]any{
				"adminUsername": "azureuser",
				"ssh": map[string]any{
					"publicKeys": []any{
						map[string]any{"keyData": arm.Param(ParamSSHPublicKey)},
					},
				},
			},
			"networkProfile": map[string]any{
				"networkPlugin":     "azure",
				"networkPluginMode": "overlay",
				"networkPolicy":     "azure",
				"podCidr":           "192.168.0.0/16",
				"serviceCidr":       "172.16.0.0/16",
				"dnsServiceIP":      "172.16.0.10",
				"loadBalancerSku":   "standard",
			},
			"addonProfiles": map[string]any{
				"omsagent": map[string]any{
					"enabled": true,
					"config": map[string]any{
						"logAnalyticsWorkspaceResourceID": arm.Param("workspaceId"),
						"useAADAuth":                      "true",
					},
				},
				"azurepolicy": map[string]any{
					"enabled": arm.Param(ParamEnableAzurePolicy),
				},
				"azureKeyvaultSecretsProvider": map[string]any{
					"enabled": true,
					"config":  map[string]any{"enableSecretRotation": "true"},
				},
			},
			"securityProfile": map[string]any{
				"defender": map[string]any{
					"logAnalyticsWorkspaceResourceId": arm.Param("workspaceId"),
					"securityMonitoring": map[string]any{
						"enabled": arm.Param(ParamEnableDefender),
					},
				},
				"workloadIdentity": map[string]any{"enabled": true},
			},
			"oidcIssuerProfile": map[string]any{"enabled": true},
			"autoUpgradeProfile": map[string]any{
				"upgradeChannel":       "patch",
				"nodeOSUpgradeChannel": "NodeImage",
			},
		},
	})

	t.AddOutput("clusterName", arm.TypeString, name)
	t.AddOutput("clusterId", arm.TypeString, id)
	t.AddOutput("clusterFqdn", arm.TypeString, arm.Reference(id, apiManagedClusters, "fqdn"))
	t.AddOutput("kubeletObjectId", arm.TypeString,
		arm.Reference(id, apiManagedClusters, "identityProfile.kubeletidentity.objectId"))
	t.AddOutput("oidcIssuerUrl", arm.TypeString, arm.Reference(id, apiManagedClusters, "oidcIssuerProfile.issuerURL"))
	return t
}

func registryPullModule() *Module {
	return &Module{
		Name:  "registryPull",
		Layer: Compute,
		Step:  2,
		Inputs: []Input{
			{Param: "registryName", Module: "registry", Output: "registryName"},
			{Param: "kubeletObjectId", Module: "cluster", Output: "kubeletObjectId"},
		},
		Template: registryPullTemplate,
	}
}

// registryPullTemplate lets cluster nodes pull from the lab registry.
func registryPullTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, nil, "registryName", "kubeletObjectId")

	scope := arm.Concat("Microsoft.ContainerRegistry/registries/", arm.Param("registryName"))
	t.Resources = append(t.Resources, roleAssignment(scope, arm.Param("kubeletObjectId"), roleAcrPull))
	return t
}
