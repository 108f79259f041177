package blueprint

import (
	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/util/naming"
)

// prefixed builds a resource name expression from the namePrefix
// parameter and a naming suffix.
func prefixed(suffix string) string {
	return arm.Concat(arm.Param(ParamNamePrefix), suffix)
}

// ActivityLogSettingName is the subscription diagnostic setting owned by a lab.
func ActivityLogSettingName(p config.Params) string {
	return naming.ActivityLogSetting(p.NamePrefix())
}

// PolicyObjectNames are the subscription-scoped policy objects a lab creates.
// They survive resource group deletion and must be removed by name.
type PolicyObjectNames struct {
	Initiative  string
	Definitions []string
}

// PolicyNames returns the policy object names for a lab prefix.
func PolicyNames(prefix string) PolicyObjectNames {
	names := PolicyObjectNames{Initiative: naming.PolicyInitiative(prefix)}
	for _, rule := range PolicyRules {
		names.Definitions = append(names.Definitions, naming.PolicyDefinition(prefix, rule.Name))
	}
	return names
}
