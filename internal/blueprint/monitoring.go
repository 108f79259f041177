package blueprint

import (
	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/util/naming"
)

func clusterScope() string {
	return arm.Concat("Microsoft.ContainerService/managedClusters/", arm.Param("clusterName"))
}

func categories(names ...string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = map[string]any{"category": n, "enabled": true}
	}
	return out
}

func diagnosticsModule() *Module {
	return &Module{
		Name:  "diagnostics",
		Layer: Monitoring,
		Inputs: []Input{
			{Param: "clusterName", Module: "cluster", Output: "clusterName"},
			{Param: "keyVaultName", Module: "secrets", Output: "keyVaultName"},
			{Param: "workspaceId", Module: "logging", Output: "workspaceId"},
		},
		Template: diagnosticsTemplate,
	}
}

// diagnosticsTemplate routes control plane and vault audit logs to the
// workspace.
func diagnosticsTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, nil, "clusterName", "keyVaultName", "workspaceId")

	t.Resources = append(t.Resources,
		&arm.Resource{
			Type:       "Microsoft.Insights/diagnosticSettings",
			APIVersion: apiDiagnostics,
			Name:       "akslab-control-plane",
			Scope:      clusterScope(),
			Properties: map[string]any{
				"workspaceId": arm.Param("workspaceId"),
				"logs":        categories("kube-apiserver", "kube-audit-admin", "kube-controller-manager", "guard"),
				"metrics":     categories("AllMetrics"),
			},
		},
		&arm.Resource{
			Type:       "Microsoft.Insights/diagnosticSettings",
			APIVersion: apiDiagnostics,
			Name:       "akslab-audit",
			Scope:      arm.Concat("Microsoft.KeyVault/vaults/", arm.Param("keyVaultName")),
			Properties: map[string]any{
				"workspaceId": arm.Param("workspaceId"),
				"logs":        categories("AuditEvent"),
				"metrics":     categories("AllMetrics"),
			},
		},
	)
	return t
}

func workloadTelemetryModule() *Module {
	return &Module{
		Name:   "workloadTelemetry",
		Layer:  Monitoring,
		Params: []string{ParamNamePrefix, ParamLocation, ParamTags},
		Inputs: []Input{
			{Param: "clusterName", Module: "cluster", Output: "clusterName"},
			{Param: "workspaceId", Module: "logging", Output: "workspaceId"},
		},
		Template: workloadTelemetryTemplate,
	}
}

// workloadTelemetryTemplate collects Container Insights streams through a
// data collection rule associated with the cluster.
func workloadTelemetryTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, []string{ParamNamePrefix, ParamLocation, ParamTags}, "clusterName", "workspaceId")

	name := prefixed(naming.DataCollectionSuffix)
	id := arm.ResourceID("Microsoft.Insights/dataCollectionRules", name)
	streams := []any{"Microsoft-ContainerInsights-Group-Default"}

	t.Resources = append(t.Resources,
		&arm.Resource{
			Type:       "Microsoft.Insights/dataCollectionRules",
			APIVersion: apiDataCollection,
			Name:       name,
			Location:   arm.Param(ParamLocation),
			Tags:       arm.Param(ParamTags),
			Kind:       "Linux",
			Properties: map[string]any{
				"dataSources": map[string]any{
					"extensions": []any{
						map[string]any{
							"name":          "ContainerInsightsExtension",
							"extensionName": "ContainerInsights",
							"streams":       streams,
							"extensionSettings": map[string]any{
								"dataCollectionSettings": map[string]any{
									"interval":               "1m",
									"namespaceFilteringMode": "Off",
									"enableContainerLogV2":   true,
								},
							},
						},
					},
				},
				"destinations": map[string]any{
					"logAnalytics": []any{
						map[string]any{
							"name":                "workspace",
							"workspaceResourceId": arm.Param("workspaceId"),
						},
					},
				},
				"dataFlows": []any{
					map[string]any{
						"streams":      streams,
						"destinations": []any{"workspace"},
					},
				},
			},
		},
		&arm.Resource{
			Type:       "Microsoft.Insights/dataCollectionRuleAssociations",
			APIVersion: apiDataCollection,
			Name:       "ContainerInsightsExtension",
			Scope:      clusterScope(),
			Properties: map[string]any{
				"dataCollectionRuleId": id,
			},
			DependsOn: []string{id},
		},
	)

	t.AddOutput("dataCollectionRuleId", arm.TypeString, id)
	return t
}

func sentinelModule() *Module {
	return &Module{
		Name:      "sentinel",
		Layer:     Monitoring,
		Condition: ParamEnableSentinel,
		Inputs: []Input{
			{Param: "workspaceName", Module: "logging", Output: "workspaceName"},
		},
		Template: sentinelTemplate,
	}
}

// sentinelTemplate onboards the workspace to Microsoft Sentinel.
func sentinelTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	declare(t, nil, "workspaceName")

	t.Resources = append(t.Resources, &arm.Resource{
		Type:       "Microsoft.SecurityInsights/onboardingStates",
		APIVersion: apiSecurityInsight,
		Name:       "default",
		Scope:      arm.Concat("Microsoft.OperationalInsights/workspaces/", arm.Param("workspaceName")),
		Properties: map[string]any{},
	})
	return t
}
