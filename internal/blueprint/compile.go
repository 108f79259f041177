package blueprint

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/imamik/akslab/internal/arm"
)

// deploymentName is the nested deployment name of a module. It carries the
// lab prefix so subscription-scope deployments of different labs never
// collide.
func deploymentName(m *Module) string {
	return arm.Concat(arm.Param(ParamNamePrefix), "-"+m.Name)
}

func deploymentID(m *Module) string {
	if m.Scope == ScopeSubscription {
		return arm.SubscriptionResourceID("Microsoft.Resources/deployments", deploymentName(m))
	}
	return arm.ResourceID("Microsoft.Resources/deployments", deploymentName(m))
}

func outputRef(m *Module, output string) string {
	return arm.Reference(deploymentID(m), apiDeployments, "outputs."+output+".value")
}

// Compile renders the graph as a resource group template with one nested
// deployment per module. Parameters flow from the main template, module
// outputs flow through reference() on the producing deployment, and
// dependsOn mirrors the graph edges.
func (g *Graph) Compile(outputs ...MainOutput) (*arm.Template, error) {
	t := arm.NewTemplate(arm.SchemaResourceGroup)
	for _, name := range slices.Sorted(maps.Keys(parameterSpecs)) {
		t.AddParameter(name, parameterSpecs[name])
	}

	for _, m := range g.Order() {
		params := make(map[string]any, len(m.Params)+len(m.Inputs))
		for _, p := range m.Params {
			if _, ok := parameterSpecs[p]; !ok {
				return nil, fmt.Errorf("%w: %s passes undeclared parameter %s", ErrParamMismatch, m.Name, p)
			}
			params[p] = value(arm.Param(p))
		}
		for _, in := range m.Inputs {
			params[in.Param] = value(outputRef(g.byName[in.Module], in.Output))
		}

		var dependsOn []string
		for _, dep := range g.dependencies(m) {
			dependsOn = append(dependsOn, deploymentID(dep))
		}

		res := &arm.Resource{
			Type:       "Microsoft.Resources/deployments",
			APIVersion: apiDeployments,
			Name:       deploymentName(m),
			Properties: &armresources.DeploymentProperties{
				Mode: to.Ptr(armresources.DeploymentModeIncremental),
				ExpressionEvaluationOptions: &armresources.ExpressionEvaluationOptions{
					Scope: to.Ptr(armresources.ExpressionEvaluationOptionsScopeTypeInner),
				},
				Template:   m.Template(),
				Parameters: params,
			},
			DependsOn: dependsOn,
		}
		if m.Condition != "" {
			res.Condition = arm.Param(m.Condition)
		}
		if m.Scope == ScopeSubscription {
			res.SubscriptionID = "[subscription().subscriptionId]"
			res.Location = arm.Param(ParamLocation)
		}
		t.Resources = append(t.Resources, res)
	}

	for _, o := range outputs {
		src, ok := g.byName[o.Module]
		if !ok {
			return nil, fmt.Errorf("%w: output %s reads %s", ErrUnknownModule, o.Name, o.Module)
		}
		if _, ok := src.Template().Outputs[o.Output]; !ok {
			return nil, fmt.Errorf("%w: output %s reads %s.%s", ErrUnknownOutput, o.Name, o.Module, o.Output)
		}
		t.Outputs[o.Name] = &arm.Output{
			Condition: conditionExpr(src),
			Type:      arm.TypeString,
			Value:     outputRef(src, o.Output),
		}
	}
	return t, nil
}

func conditionExpr(m *Module) string {
	if m.Condition == "" {
		return ""
	}
	return arm.Param(m.Condition)
}
