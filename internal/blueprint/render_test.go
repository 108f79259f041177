package blueprint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tmpl := SubscriptionTemplate()

	out, err := Render(tmpl, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded["$schema"], "subscriptionDeploymentTemplate")

	out, err = Render(tmpl, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "contentVersion: 1.0.0.0")
	assert.Contains(t, string(out), "Microsoft.Security/pricings")

	_, err = Render(tmpl, "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestNewParametersFile(t *testing.T) {
	t.Parallel()

	out, err := Render(NewParametersFile(ResourceGroupParameters(testParams())), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), "deploymentParameters.json")
	assert.Contains(t, string(out), `"akslababc123"`)
}

func TestSubscriptionTemplate_Resources(t *testing.T) {
	t.Parallel()

	tmpl := SubscriptionTemplate()
	require.Len(t, tmpl.Resources, 3)
	assert.Equal(t, DefenderPlanContainers, tmpl.Resources[0].Name)
	assert.Equal(t, "[parameters('enableDefenderForContainers')]", tmpl.Resources[0].Condition)
	assert.Equal(t, "[parameters('routeActivityLog')]", tmpl.Resources[2].Condition)
}
