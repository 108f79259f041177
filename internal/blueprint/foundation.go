package blueprint

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"

	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/util/naming"
)

const (
	vnetAddressSpace = "10.42.0.0/16"
	nodeSubnetPrefix = "10.42.0.0/20"
	nodeSubnetName   = "aks-nodes"
)

func loggingModule() *Module {
	return &Module{
		Name:     "logging",
		Layer:    Foundation,
		Params:   []string{ParamNamePrefix, ParamLocation, ParamTags, ParamLogRetentionDays},
		Template: loggingTemplate,
	}
}

func loggingTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags, ParamLogRetentionDays})

	name := prefixed(naming.WorkspaceSuffix)
	id := arm.ResourceID("Microsoft.OperationalInsights/workspaces", name)
	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.OperationalInsights/workspaces",
		APIVersion: apiWorkspaces,
		Name:       name,
		Location:   arm.Param(ParamLocation),
		Tags:       arm.Param(ParamTags),
		Properties: map[string]any{
			"sku":             map[string]any{"name": "PerGB2018"},
			"retentionInDays": arm.Param(ParamLogRetentionDays),
			"features": map[string]any{
				"enableLogAccessUsingOnlyResourcePermissions": true,
			},
		},
	})

	t.AddOutput("workspaceId", arm.TypeString, id)
	t.AddOutput("workspaceName", arm.TypeString, name)
	t.AddOutput("customerId", arm.TypeString, arm.Reference(id, apiWorkspaces, "customerId"))
	return t
}

func networkingModule() *Module {
	return &Module{
		Name:     "networking",
		Layer:    Foundation,
		Params:   []string{ParamNamePrefix, ParamLocation, ParamTags, ParamAuthorizedIPRange},
		Template: networkingTemplate,
	}
}

func networkingTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags, ParamAuthorizedIPRange})

	nsgName := prefixed(naming.SecurityGroupSuffix)
	nsgID := arm.ResourceID("Microsoft.Network/networkSecurityGroups", nsgName)
	vnetName := prefixed(naming.VirtualNetworkSuffix)
	vnetID := arm.ResourceID("Microsoft.Network/virtualNetworks", vnetName)

	t.Resources = append(t.Resources,
		&arm.Resource{
			Type:       "Microsoft.Network/networkSecurityGroups",
			APIVersion: apiNetwork,
			Name:       nsgName,
			Location:   arm.Param(ParamLocation),
			Tags:       arm.Param(ParamTags),
			Properties: &armnetwork.SecurityGroupPropertiesFormat{
				SecurityRules: []*armnetwork.SecurityRule{
					{
						Name: to.Ptr("allow-authorized-web"),
						Properties: &armnetwork.SecurityRulePropertiesFormat{
							Description:              to.Ptr("Ingress from the authorized range only"),
							Priority:                 to.Ptr[int32](100),
							Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
							Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
							Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
							SourceAddressPrefix:      to.Ptr(arm.Param(ParamAuthorizedIPRange)),
							SourcePortRange:          to.Ptr("*"),
							DestinationAddressPrefix: to.Ptr("*"),
							DestinationPortRanges:    []*string{to.Ptr("80"), to.Ptr("443")},
						},
					},
					{
						Name: to.Ptr("deny-internet-inbound"),
						Properties: &armnetwork.SecurityRulePropertiesFormat{
							Priority:                 to.Ptr[int32](4000),
							Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
							Access:                   to.Ptr(armnetwork.SecurityRuleAccessDeny),
							Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolAsterisk),
							SourceAddressPrefix:      to.Ptr("Internet"),
							SourcePortRange:          to.Ptr("*"),
							DestinationAddressPrefix: to.Ptr("*"),
							DestinationPortRange:     to.Ptr("*"),
						},
					},
				},
			},
		},
		&arm.Resource{
			Type:       "Microsoft.Network/virtualNetworks",
			APIVersion: apiNetwork,
			Name:       vnetName,
			Location:   arm.Param(ParamLocation),
			Tags:       arm.Param(ParamTags),
			Properties: &armnetwork.VirtualNetworkPropertiesFormat{
				AddressSpace: &armnetwork.AddressSpace{
					AddressPrefixes: []*string{to.Ptr(vnetAddressSpace)},
				},
				Subnets: []*armnetwork.Subnet{
					{
						Name: to.Ptr(nodeSubnetName),
						Properties: &armnetwork.SubnetPropertiesFormat{
							AddressPrefix:        to.Ptr(nodeSubnetPrefix),
							NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: to.Ptr(nsgID)},
							ServiceEndpoints: []*armnetwork.ServiceEndpointPropertiesFormat{
								{Service: to.Ptr("Microsoft.KeyVault")},
								{Service: to.Ptr("Microsoft.ContainerRegistry")},
							},
						},
					},
				},
			},
			DependsOn: []string{nsgID},
		},
	)

	t.AddOutput("vnetName", arm.TypeString, vnetName)
	t.AddOutput("vnetId", arm.TypeString, vnetID)
	t.AddOutput("nodeSubnetId", arm.TypeString,
		arm.ResourceID("Microsoft.Network/virtualNetworks/subnets", vnetName, nodeSubnetName))
	return t
}

func registryModule() *Module {
	return &Module{
		Name:     "registry",
		Layer:    Foundation,
		Params:   []string{ParamNamePrefix, ParamLocation, ParamTags},
		Template: registryTemplate,
	}
}

func registryTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags})

	name := prefixed(naming.RegistrySuffix)
	id := arm.ResourceID("Microsoft.ContainerRegistry/registries", name)
	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.ContainerRegistry/registries",
		APIVersion: apiRegistry,
		Name:       name,
		Location:   arm.Param(ParamLocation),
		Tags:       arm.Param(ParamTags),
		SKU:        map[string]any{"name": "Standard"},
		Properties: map[string]any{
			"adminUserEnabled":     false,
			"anonymousPullEnabled": false,
			"publicNetworkAccess":  "Enabled",
		},
	})

	t.AddOutput("registryName", arm.TypeString, name)
	t.AddOutput("registryId", arm.TypeString, id)
	t.AddOutput("loginServer", arm.TypeString, arm.Reference(id, apiRegistry, "loginServer"))
	return t
}

func identityModule() *Module {
	return &Module{
		Name:     "identity",
		Layer:    Foundation,
		Params:   []string{ParamNamePrefix, ParamLocation, ParamTags},
		Template: identityTemplate,
	}
}

func identityTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags})

	name := prefixed(naming.IdentitySuffix)
	id := arm.ResourceID("Microsoft.ManagedIdentity/userAssignedIdentities", name)
	t.Resources = append(t.Resources, &arm.Resource{
		Model: &armmsi.Identity{
			Location: to.Ptr(arm.Param(ParamLocation)),
		},
		Type:       "Microsoft.ManagedIdentity/userAssignedIdentities",
		APIVersion: apiIdentity,
		Name:       name,
		Tags:       arm.Param(ParamTags),
	})

	t.AddOutput("identityId", arm.TypeString, id)
	t.AddOutput("principalId", arm.TypeString, arm.Reference(id, apiIdentity, "principalId"))
	t.AddOutput("clientId", arm.TypeString, arm.Reference(id, apiIdentity, "clientId"))
	return t
}

func secretsModule() *Module {
	return &Module{
		Name:   "secrets",
		Layer:  Foundation,
		Step:   1,
		Params: []string{ParamNamePrefix, ParamLocation, ParamTags, ParamAuthorizedIPRange},
		Inputs: []Input{
			{Param: "nodeSubnetId", Module: "networking", Output: "nodeSubnetId"},
		},
		Template: secretsTemplate,
	}
}

func secretsTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags, ParamAuthorizedIPRange}, "nodeSubnetId")

	name := prefixed(naming.KeyVaultSuffix)
	id := arm.ResourceID("Microsoft.KeyVault/vaults", name)
	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.KeyVault/vaults",
		APIVersion: apiKeyVault,
		Name:       name,
		Location:   arm.Param(ParamLocation),
		Tags:       arm.Param(ParamTags),
		Properties: &armkeyvault.VaultProperties{
			TenantID: to.Ptr("[subscription().tenantId]"),
			SKU: &armkeyvault.SKU{
				Family: to.Ptr(armkeyvault.SKUFamilyA),
				Name:   to.Ptr(armkeyvault.SKUNameStandard),
			},
			EnableRbacAuthorization:   to.Ptr(true),
			EnableSoftDelete:          to.Ptr(true),
			SoftDeleteRetentionInDays: to.Ptr[int32](7),
			PublicNetworkAccess:       to.Ptr("Enabled"),
			NetworkACLs: &armkeyvault.NetworkRuleSet{
				DefaultAction: to.Ptr(armkeyvault.NetworkRuleActionDeny),
				Bypass:        to.Ptr(armkeyvault.NetworkRuleBypassOptionsAzureServices),
				IPRules: []*armkeyvault.IPRule{
					{Value: to.Ptr(arm.Param(ParamAuthorizedIPRange))},
				},
				VirtualNetworkRules: []*armkeyvault.VirtualNetworkRule{
					{ID: to.Ptr(arm.Param("nodeSubnetId"))},
				},
			},
		},
	})

	t.AddOutput("keyVaultName", arm.TypeString, name)
	t.AddOutput("keyVaultId", arm.TypeString, id)
	t.AddOutput("keyVaultUri", arm.TypeString, arm.Reference(id, apiKeyVault, "vaultUri"))
	return t
}
