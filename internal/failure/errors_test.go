package failure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing tool", MissingTool([]string{"az"}, "install az"), ErrMissingTool},
		{"missing file", MissingFile("main.json", cause), ErrMissingFile},
		{"missing parameter", MissingParameter("location", ""), ErrMissingParameter},
		{"invalid parameter", InvalidParameter("authorizedIp", "x", cause), ErrInvalidParameter},
		{"credentials", CredentialFailure(cause, "az aks get-credentials"), ErrCredentials},
		{"manifest", ManifestFailure("rbac.yaml", cause, "kubectl apply -f rbac.yaml"), ErrManifestApply},
		{"deployment", &DeploymentError{Scope: ScopeResourceGroup, Deployment: "d"}, ErrDeploymentFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestDetailError_WrapsCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("timeout")
	err := CredentialFailure(cause, "az aks get-credentials -g rg -n aks")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "credential configuration failed")
	assert.Contains(t, err.Error(), "Hint: az aks get-credentials -g rg -n aks")
}

func TestMissingParameter_NamesField(t *testing.T) {
	t.Parallel()
	err := MissingParameter("adminGroupObjectId", "pass --admin-group-id")
	assert.Contains(t, err.Error(), "(adminGroupObjectId)")
}

func TestDeploymentError_Message(t *testing.T) {
	t.Parallel()
	err := &DeploymentError{
		Scope:      ScopeResourceGroup,
		Deployment: "akslab-main",
		State:      "Failed",
		PortalURL:  "https://portal.azure.com/x",
	}
	msg := err.Error()
	assert.Contains(t, msg, `resource-group deployment "akslab-main" failed (state: Failed)`)
	assert.Contains(t, msg, "https://portal.azure.com/x")
}

func TestFatal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"resource group deployment", &DeploymentError{Scope: ScopeResourceGroup}, true},
		{"subscription deployment", &DeploymentError{Scope: ScopeSubscription}, false},
		{"credentials", CredentialFailure(errors.New("x"), ""), false},
		{"manifest", ManifestFailure("a.yaml", errors.New("x"), ""), false},
		{"missing tool", MissingTool([]string{"az"}, ""), true},
		{"missing parameter", MissingParameter("location", ""), true},
		{"plain", errors.New("unexpected"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.fatal, Fatal(tt.err))
		})
	}
}
