package prerequisites

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/akslab/internal/failure"
)

func withLookPath(t *testing.T, found map[string]string) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestCheck(t *testing.T) {
	withLookPath(t, map[string]string{"az": "/usr/bin/az"})

	results := Check([]Tool{{Name: "az", Required: true, InstallURL: "https://example.com"}})

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.Equal(t, "/usr/bin/az", results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheckMissingTool(t *testing.T) {
	withLookPath(t, nil)

	results := Check([]Tool{{
		Name:        "az",
		Required:    true,
		Description: "Azure CLI",
		InstallURL:  "https://example.com/az",
	}})

	require.Len(t, results.Missing, 1)
	assert.True(t, results.HasErrors())

	err := results.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrMissingTool))
	assert.Contains(t, err.Error(), "az")
	assert.Contains(t, err.Error(), "https://example.com/az")
}

func TestCheckOptionalMissing(t *testing.T) {
	withLookPath(t, nil)

	results := Check([]Tool{{
		Name:     "kubelogin",
		Required: false, // optional
	}})

	assert.Len(t, results.Missing, 1)
	// Optional tools don't cause errors
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestDefaultTools(t *testing.T) {
	tools := DefaultTools()

	require.Len(t, tools, 1)
	assert.Equal(t, "az", tools[0].Name)
	assert.True(t, tools[0].Required)
}

func TestOptionalTools(t *testing.T) {
	for _, tool := range OptionalTools() {
		assert.False(t, tool.Required, "tool %s should be optional", tool.Name)
		assert.NotEmpty(t, tool.InstallURL)
	}
}

func TestCheckAll(t *testing.T) {
	withLookPath(t, map[string]string{"kubectl": "/usr/local/bin/kubectl"})

	results := CheckAll()

	assert.Len(t, results.Results, len(DefaultTools())+len(OptionalTools()))
	assert.True(t, results.HasErrors(), "az is missing")
}

func TestGetToolVersion_NoArgs(t *testing.T) {
	assert.Empty(t, getToolVersion("/nonexistent", nil))
}
