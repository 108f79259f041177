package blueprint

import (
	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/config"
)

// Main template parameter names.
const (
	ParamNamePrefix         = "namePrefix"
	ParamLocation           = "location"
	ParamAdminGroupObjectID = "adminGroupObjectId"
	ParamAuthorizedIPRange  = "authorizedIpRange"
	ParamLogRetentionDays   = "logRetentionDays"
	ParamKubernetesVersion  = "kubernetesVersion"
	ParamSystemNodeVMSize   = "systemNodeVmSize"
	ParamUserNodeVMSize     = "userNodeVmSize"
	ParamEnableDefender     = "enableDefender"
	ParamEnableAzurePolicy  = "enableAzurePolicy"
	ParamEnableSentinel     = "enableSentinelSolutions"
	ParamTags               = "tags"
	ParamSSHPublicKey       = "sshPublicKey"
)

// Subscription template parameter names.
const (
	ParamWorkspaceID                 = "logAnalyticsWorkspaceId"
	ParamEnableDefenderForContainers = "enableDefenderForContainers"
	ParamEnableDefenderForKeyVault   = "enableDefenderForKeyVault"
	ParamRouteActivityLog            = "routeActivityLog"
	ParamActivityLogSettingName      = "activityLogSettingName"
)

func intPtr(i int) *int { return &i }

// parameterSpecs declares every main-template parameter. Inner templates
// reuse the same declarations for pass-through parameters.
var parameterSpecs = map[string]*arm.TemplateParameter{
	ParamNamePrefix: {
		Type:      arm.TypeString,
		MinLength: intPtr(7),
		MaxLength: intPtr(16),
		Metadata:  &arm.Metadata{Description: "Prefix for every resource name"},
	},
	ParamLocation: {
		Type:         arm.TypeString,
		DefaultValue: "[resourceGroup().location]",
	},
	ParamAdminGroupObjectID: {
		Type:     arm.TypeString,
		Metadata: &arm.Metadata{Description: "Entra ID group granted cluster-admin"},
	},
	ParamAuthorizedIPRange: {
		Type:     arm.TypeString,
		Metadata: &arm.Metadata{Description: "IPv4 CIDR allowed to reach the API server and key vault"},
	},
	ParamLogRetentionDays: {
		Type:         arm.TypeInt,
		DefaultValue: config.DefaultLogRetentionDays,
		MinValue:     intPtr(config.MinLogRetentionDays),
		MaxValue:     intPtr(config.MaxLogRetentionDays),
	},
	ParamKubernetesVersion: {Type: arm.TypeString, DefaultValue: config.DefaultKubernetesVersion},
	ParamSystemNodeVMSize:  {Type: arm.TypeString, DefaultValue: config.DefaultSystemNodeVMSize},
	ParamUserNodeVMSize:    {Type: arm.TypeString, DefaultValue: config.DefaultUserNodeVMSize},
	ParamEnableDefender:    {Type: arm.TypeBool, DefaultValue: false},
	ParamEnableAzurePolicy: {Type: arm.TypeBool, DefaultValue: true},
	ParamEnableSentinel:    {Type: arm.TypeBool, DefaultValue: true},
	ParamTags:              {Type: arm.TypeObject, DefaultValue: map[string]string{}},
	ParamSSHPublicKey:      {Type: arm.TypeString},
}

// declare adds pass-through parameters and string inputs to an inner
// template.
func declare(t *arm.Template, params []string, inputs ...string) {
	for _, name := range params {
		// Inner templates always receive every value, so defaults are dropped.
		spec := *parameterSpecs[name]
		spec.Metadata = nil
		spec.DefaultValue = nil
		t.AddParameter(name, &spec)
	}
	for _, name := range inputs {
		t.AddParameter(name, &arm.TemplateParameter{Type: arm.TypeString})
	}
}

// value wraps a parameter value the way deployments expect it.
func value(v any) map[string]any {
	return map[string]any{"value": v}
}

// ResourceGroupParameters returns the parameter values for the main
// template.
func ResourceGroupParameters(p config.Params) map[string]any {
	return map[string]any{
		ParamNamePrefix:         value(p.NamePrefix()),
		ParamLocation:           value(p.Location),
		ParamAdminGroupObjectID: value(p.AdminGroupObjectID),
		ParamAuthorizedIPRange:  value(p.AuthorizedIPRange),
		ParamLogRetentionDays:   value(p.LogRetentionDays),
		ParamKubernetesVersion:  value(p.KubernetesVersion),
		ParamSystemNodeVMSize:   value(p.SystemNodeVMSize),
		ParamUserNodeVMSize:     value(p.UserNodeVMSize),
		ParamEnableDefender:     value(p.EnableDefender),
		ParamEnableAzurePolicy:  value(p.EnableAzurePolicy),
		ParamEnableSentinel:     value(p.EnableSentinelSolutions),
		ParamTags:               value(p.Tags),
		ParamSSHPublicKey:       value(p.SSHPublicKey),
	}
}

// SubscriptionParameters returns the parameter values for the subscription
// template.
func SubscriptionParameters(p config.Params, workspaceID string) map[string]any {
	return map[string]any{
		ParamLocation:                    value(p.Location),
		ParamWorkspaceID:                 value(workspaceID),
		ParamEnableDefenderForContainers: value(p.EnableDefender),
		ParamEnableDefenderForKeyVault:   value(p.EnableDefender),
		ParamRouteActivityLog:            value(p.RouteActivityLog),
		ParamActivityLogSettingName:      value(ActivityLogSettingName(p)),
	}
}
