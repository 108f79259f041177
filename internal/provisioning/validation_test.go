package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/failure"
	testfx "github.com/imamik/akslab/internal/testing"
)

func validationContext(p config.Params) (*Context, *MockObserver) {
	ctx, observer := newTestContext()
	ctx.Params = p
	ctx.Azure = testfx.NewAzureFixture().SuccessfulDeployment()
	return ctx, observer
}

func TestValidationPhase_Valid(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithSentinel(false).WithManifests("manifests/00-namespaces.yaml").Build()
	ctx, observer := validationContext(p)

	require.NoError(t, NewValidationPhase().Provision(ctx))
	assert.Empty(t, observer.EventsOfType(EventValidationWarning))
}

func TestValidationPhase_InvalidParams(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithLocation("mars-central").Build()
	ctx, _ := validationContext(p)

	err := NewValidationPhase().Provision(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrInvalidParameter)
	assert.True(t, failure.Fatal(err))
}

func TestValidationPhase_Checks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		params      config.Params
		expectError bool
		warnField   string
	}{
		{
			name:        "unparseable kubernetes version",
			params:      testfx.NewParamsBuilder().WithKubernetesVersion("latest").WithManifests("a.yaml").Build(),
			expectError: true,
		},
		{
			name:      "kubernetes version out of support",
			params:    testfx.NewParamsBuilder().WithKubernetesVersion("1.27").WithManifests("a.yaml").Build(),
			warnField: "kubernetesVersion",
		},
		{
			name:      "broad authorized range",
			params:    testfx.NewParamsBuilder().WithAuthorizedIP("10.0.0.0/16").WithManifests("a.yaml").Build(),
			warnField: "authorizedIpRange",
		},
		{
			name:      "no manifests",
			params:    testfx.NewParamsBuilder().Build(),
			warnField: "manifests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, observer := validationContext(tt.params)
			ctx.Params.LogRetentionDays = 90

			err := NewValidationPhase().Provision(ctx)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, failure.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			warnings := observer.EventsOfType(EventValidationWarning)
			require.Len(t, warnings, 1)
			assert.Equal(t, tt.warnField, warnings[0].Fields["field"])
		})
	}
}

func TestValidationPhase_OpenAuthorizedRangeCountsAddresses(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithAuthorizedIP("0.0.0.0/0").WithManifests("a.yaml").Build()
	ctx, observer := validationContext(p)
	ctx.Params.LogRetentionDays = 90

	require.NoError(t, NewValidationPhase().Provision(ctx))

	warnings := observer.EventsOfType(EventValidationWarning)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "0.0.0.0/0 authorizes 4294967296 addresses")
}

func TestValidationPhase_SentinelRetentionWarning(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithSentinel(true).WithManifests("a.yaml").Build()
	ctx, observer := validationContext(p)

	require.NoError(t, NewValidationPhase().Provision(ctx))
	warnings := observer.EventsOfType(EventValidationWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "logRetentionDays", warnings[0].Fields["field"])
}

func TestValidationPhase_ExistingResourceGroup(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithSentinel(false).WithManifests("a.yaml").Build()
	ctx, observer := validationContext(p)
	ctx.Azure = testfx.NewAzureFixture().Mock()

	require.NoError(t, NewValidationPhase().Provision(ctx))
	warnings := observer.EventsOfType(EventValidationWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "rg-akslab-abc123", warnings[0].Resource)
}

func TestValidationPhase_ResourceGroupLookupFails(t *testing.T) {
	t.Parallel()
	p := testfx.NewParamsBuilder().WithManifests("a.yaml").Build()
	ctx, _ := validationContext(p)
	mock := testfx.NewAzureFixture().Mock()
	mock.ResourceGroupExistsFunc = func(_ context.Context, _ string) (bool, error) {
		return false, errors.New("AuthorizationFailed")
	}
	ctx.Azure = mock

	err := NewValidationPhase().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationFailed")
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	ve := ValidationError{Field: "manifests", Message: "none", Severity: "warning"}

	assert.Equal(t, "[warning] manifests: none", ve.Error())
	assert.False(t, ve.IsError())
}
