package blueprint

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"

	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/util/labels"
	"github.com/imamik/akslab/internal/util/naming"
)

// PolicyRule is one custom audit definition in the lab baseline.
type PolicyRule struct {
	Name        string
	DisplayName string
	Mode        string
	Rule        map[string]any
}

func auditWhen(conditions ...map[string]any) map[string]any {
	all := make([]any, len(conditions))
	for i, c := range conditions {
		all[i] = c
	}
	return map[string]any{
		"if":   map[string]any{"allOf": all},
		"then": map[string]any{"effect": "audit"},
	}
}

func isType(typ string) map[string]any {
	return map[string]any{"field": "type", "equals": typ}
}

// PolicyRules make up the lab baseline initiative.
var PolicyRules = []PolicyRule{
	{
		Name:        "aks-authorized-ip-ranges",
		DisplayName: "AKS API server restricts authorized IP ranges",
		Mode:        "Indexed",
		Rule: auditWhen(
			isType("Microsoft.ContainerService/managedClusters"),
			map[string]any{
				"field":  "Microsoft.ContainerService/managedClusters/apiServerAccessProfile.authorizedIPRanges",
				"exists": "false",
			},
		),
	},
	{
		Name:        "aks-local-accounts-disabled",
		DisplayName: "AKS local accounts are disabled",
		Mode:        "Indexed",
		Rule: auditWhen(
			isType("Microsoft.ContainerService/managedClusters"),
			map[string]any{
				"field":     "Microsoft.ContainerService/managedClusters/disableLocalAccounts",
				"notEquals": true,
			},
		),
	},
	{
		Name:        "keyvault-rbac-authorization",
		DisplayName: "Key vaults use RBAC authorization",
		Mode:        "Indexed",
		Rule: auditWhen(
			isType("Microsoft.KeyVault/vaults"),
			map[string]any{
				"field":     "Microsoft.KeyVault/vaults/enableRbacAuthorization",
				"notEquals": true,
			},
		),
	},
	{
		Name:        "require-lab-tag",
		DisplayName: "Lab resources carry the lab tag",
		Mode:        "Indexed",
		Rule: auditWhen(
			map[string]any{
				"field":  "tags['" + labels.KeyLab + "']",
				"exists": "false",
			},
		),
	},
}

func policyDefinitionsModule() *Module {
	return &Module{
		Name:      "policyDefinitions",
		Layer:     Governance,
		Scope:     ScopeSubscription,
		Condition: ParamEnableAzurePolicy,
		Params:    []string{ParamNamePrefix},
		Template:  policyDefinitionsTemplate,
	}
}

func policyDefinitionsTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaSubscription)
	declare(t, []string{ParamNamePrefix})

	var (
		refs      []*armpolicy.DefinitionReference
		dependsOn []string
	)
	for _, rule := range PolicyRules {
		name := arm.Concat(arm.Param(ParamNamePrefix), "-"+rule.Name)
		id := arm.SubscriptionResourceID("Microsoft.Authorization/policyDefinitions", name)
		t.Resources = append(t.Resources, &arm.Resource{
			Type:       "Microsoft.Authorization/policyDefinitions",
			APIVersion: apiPolicy,
			Name:       name,
			Properties: &armpolicy.DefinitionProperties{
				PolicyType:  to.Ptr(armpolicy.PolicyTypeCustom),
				Mode:        to.Ptr(rule.Mode),
				DisplayName: to.Ptr(rule.DisplayName),
				Metadata:    map[string]any{"category": "akslab"},
				PolicyRule:  rule.Rule,
			},
		})
		refs = append(refs, &armpolicy.DefinitionReference{
			PolicyDefinitionID:          to.Ptr(id),
			PolicyDefinitionReferenceID: to.Ptr(rule.Name),
		})
		dependsOn = append(dependsOn, id)
	}

	initiative := prefixed(naming.PolicyInitiativeSuffix)
	initiativeID := arm.SubscriptionResourceID("Microsoft.Authorization/policySetDefinitions", initiative)
	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.Authorization/policySetDefinitions",
		APIVersion: apiPolicy,
		Name:       initiative,
		Properties: &armpolicy.SetDefinitionProperties{
			PolicyType:        to.Ptr(armpolicy.PolicyTypeCustom),
			DisplayName:       to.Ptr(arm.Concat("AKS lab baseline (", arm.Param(ParamNamePrefix), ")")),
			Metadata:          map[string]any{"category": "akslab"},
			PolicyDefinitions: refs,
		},
		DependsOn: dependsOn,
	})

	t.AddOutput("initiativeId", arm.TypeString, initiativeID)
	return t
}

func policyAssignmentModule() *Module {
	return &Module{
		Name:      "policyAssignment",
		Layer:     Governance,
		Step:      1,
		Condition: ParamEnableAzurePolicy,
		Params:    []string{ParamNamePrefix},
		Inputs: []Input{
			{Param: "initiativeId", Module: "policyDefinitions", Output: "initiativeId"},
		},
		Template: policyAssignmentTemplate,
	}
}

// policyAssignmentTemplate assigns the baseline to the lab resource group.
func policyAssignmentTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix}, "initiativeId")

	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.Authorization/policyAssignments",
		APIVersion: apiPolicy,
		Name:       prefixed(naming.PolicyAssignmentSuffix),
		Properties: &armpolicy.AssignmentProperties{
			PolicyDefinitionID: to.Ptr(arm.Param("initiativeId")),
			DisplayName:        to.Ptr(arm.Concat("AKS lab baseline (", arm.Param(ParamNamePrefix), ")")),
			EnforcementMode:    to.Ptr(armpolicy.EnforcementModeDefault),
		},
	})
	return t
}
