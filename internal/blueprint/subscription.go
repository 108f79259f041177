package blueprint

import (
	"github.com/imamik/akslab/internal/arm"
)

// Defender plans enabled by the subscription template.
const (
	DefenderPlanContainers = "Containers"
	DefenderPlanKeyVaults  = "KeyVaults"
)

// SubscriptionTemplate builds the subscription-scope template: Defender
// pricing tiers and activity log routing to the lab workspace.
func SubscriptionTemplate() *arm.Template {
	t := arm.NewTemplate(arm.SchemaSubscription)
	t.AddParameter(ParamLocation, &arm.TemplateParameter{Type: arm.TypeString})
	t.AddParameter(ParamWorkspaceID, &arm.TemplateParameter{Type: arm.TypeString})
	t.AddParameter(ParamEnableDefenderForContainers, &arm.TemplateParameter{Type: arm.TypeBool, DefaultValue: false})
	t.AddParameter(ParamEnableDefenderForKeyVault, &arm.TemplateParameter{Type: arm.TypeBool, DefaultValue: false})
	t.AddParameter(ParamRouteActivityLog, &arm.TemplateParameter{Type: arm.TypeBool, DefaultValue: true})
	t.AddParameter(ParamActivityLogSettingName, &arm.TemplateParameter{Type: arm.TypeString})

	pricing := func(plan, cond string) *arm.Resource {
		return &arm.Resource{
			Type:       "Microsoft.Security/pricings",
			APIVersion: apiPricings,
			Name:       plan,
			Condition:  arm.Param(cond),
			Properties: map[string]any{"pricingTier": "Standard"},
		}
	}

	t.Resources = append(t.Resources,
		pricing(DefenderPlanContainers, ParamEnableDefenderForContainers),
		pricing(DefenderPlanKeyVaults, ParamEnableDefenderForKeyVault),
		&arm.Resource{
			Type:       "Microsoft.Insights/diagnosticSettings",
			APIVersion: apiDiagnostics,
			Name:       arm.Param(ParamActivityLogSettingName),
			Condition:  arm.Param(ParamRouteActivityLog),
			Properties: map[string]any{
				"workspaceId": arm.Param(ParamWorkspaceID),
				"logs":        categories("Administrative", "Security", "Policy", "Alert"),
			},
		},
	)
	return t
}
