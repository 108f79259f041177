package configure

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/k8s"
	"github.com/imamik/akslab/internal/platform/azcli"
	"github.com/imamik/akslab/internal/provisioning"
	testfx "github.com/imamik/akslab/internal/testing"
	"github.com/imamik/akslab/internal/util/retry"
)

type fakeCredentials struct {
	err   error
	calls int
	got   azcli.Cluster
}

func (f *fakeCredentials) GetCredentials(_ context.Context, c azcli.Cluster, _ string) error {
	f.calls++
	f.got = c
	return f.err
}

type fakeCluster struct {
	applied    [][]byte
	applyErr   func(data []byte) error
	versionErr error
}

func (f *fakeCluster) ApplyManifests(_ context.Context, manifests []byte, _ string) (int, error) {
	f.applied = append(f.applied, manifests)
	if f.applyErr != nil {
		if err := f.applyErr(manifests); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

func (f *fakeCluster) ServerVersion(_ context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "v1.31.2", nil
}

func (f *fakeCluster) NodeStatus(_ context.Context) (int, int, error) {
	return 3, 3, nil
}

func newPhase(creds *fakeCredentials, cluster *fakeCluster) (*Phase, *int) {
	opened := 0
	return &Phase{
		Credentials: creds,
		NewClient: func(string) (k8s.Client, error) {
			opened++
			return cluster, nil
		},
		PollInterval: time.Millisecond,
		RetryOptions: []retry.Option{
			retry.WithMaxRetries(2),
			retry.WithInitialDelay(time.Millisecond),
			retry.WithMaxDelay(time.Millisecond),
		},
	}, &opened
}

func newContext(t *testing.T, params config.Params) *provisioning.Context {
	t.Helper()
	ctx := provisioning.NewContext(testfx.TestContext(t), params, testfx.NewAzureFixture().Mock(), provisioning.NewMockObserver())
	ctx.Timeouts.APIServerWait = 50 * time.Millisecond
	return ctx
}

func TestPhase_AppliesEveryManifest(t *testing.T) {
	t.Parallel()
	dir := testfx.WriteManifests(t, map[string]string{
		"00-namespaces.yaml": testfx.NamespaceManifest,
		"20-rbac.yaml":       "kind: Role\n",
		"40-workloads.yaml":  "kind: Deployment\n",
	})
	paths := []string{
		filepath.Join(dir, "00-namespaces.yaml"),
		filepath.Join(dir, "10-network-policies.yaml"),
		filepath.Join(dir, "20-rbac.yaml"),
		filepath.Join(dir, "40-workloads.yaml"),
	}
	cluster := &fakeCluster{applyErr: func(data []byte) error {
		if bytes.Contains(data, []byte("Role")) {
			return errors.New("forbidden")
		}
		return nil
	}}
	phase, _ := newPhase(&fakeCredentials{}, cluster)
	ctx := newContext(t, testfx.NewParamsBuilder().WithStateDir(t.TempDir()).WithManifests(paths...).Build())

	require.NoError(t, phase.Provision(ctx))

	result := ctx.State.Configure
	require.Len(t, result.Manifests, 4)
	statuses := make([]provisioning.ManifestStatus, 0, 4)
	for _, m := range result.Manifests {
		statuses = append(statuses, m.Status)
	}
	assert.Equal(t, []provisioning.ManifestStatus{
		provisioning.ManifestApplied,
		provisioning.ManifestMissing,
		provisioning.ManifestFailed,
		provisioning.ManifestApplied,
	}, statuses)
	assert.Len(t, cluster.applied, 3, "the missing file is the only one not attempted")
	assert.Equal(t, 2, result.Applied())
	assert.ErrorIs(t, result.Manifests[1].Err, failure.ErrMissingFile)
	assert.ErrorIs(t, result.Manifests[2].Err, failure.ErrManifestApply)
	assert.Contains(t, result.Manifests[2].FollowUp, "kubectl apply --server-side -f "+paths[2])
	assert.Equal(t, "v1.31.2", result.ServerVersion)
	assert.True(t, result.CredentialsOK())
	assert.Len(t, ctx.State.Warnings, 2)
}

func TestPhase_CredentialFailureSkipsManifests(t *testing.T) {
	t.Parallel()
	creds := &fakeCredentials{err: errors.New("az: not logged in")}
	cluster := &fakeCluster{}
	phase, opened := newPhase(creds, cluster)
	ctx := newContext(t, testfx.NewParamsBuilder().
		WithStateDir(t.TempDir()).
		WithManifests("manifests/00-namespaces.yaml").
		Build())

	require.NoError(t, phase.Provision(ctx))

	result := ctx.State.Configure
	assert.True(t, result.Ran)
	assert.False(t, result.CredentialsOK())
	assert.ErrorIs(t, result.CredentialsErr, failure.ErrCredentials)
	assert.Contains(t, result.FollowUp, "az aks get-credentials")
	assert.Contains(t, result.FollowUp, "kubelogin convert-kubeconfig")
	assert.Equal(t, 3, creds.calls, "initial attempt plus two retries")
	assert.Zero(t, *opened)
	assert.Empty(t, result.Manifests)
	assert.Empty(t, cluster.applied)
	assert.True(t, ctx.State.Degraded())
}

func TestPhase_APIServerNeverAnswers(t *testing.T) {
	t.Parallel()
	cluster := &fakeCluster{versionErr: errors.New("connection refused")}
	phase, _ := newPhase(&fakeCredentials{}, cluster)
	ctx := newContext(t, testfx.NewParamsBuilder().WithStateDir(t.TempDir()).Build())

	require.NoError(t, phase.Provision(ctx))

	assert.ErrorIs(t, ctx.State.Configure.CredentialsErr, failure.ErrCredentials)
	assert.Empty(t, cluster.applied)
}

func TestPhase_ClientFactoryError(t *testing.T) {
	t.Parallel()
	phase, _ := newPhase(&fakeCredentials{}, nil)
	phase.NewClient = func(string) (k8s.Client, error) {
		return nil, errors.New("invalid kubeconfig")
	}
	ctx := newContext(t, testfx.NewParamsBuilder().WithStateDir(t.TempDir()).Build())

	require.NoError(t, phase.Provision(ctx))
	assert.False(t, ctx.State.Configure.CredentialsOK())
}

func TestPhase_ClusterName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		outputs map[string]string
		want    string
	}{
		{"from deployment output", map[string]string{blueprint.OutputClusterName: "custom-aks"}, "custom-aks"},
		{"computed when output missing", map[string]string{}, "akslababc123-aks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			creds := &fakeCredentials{}
			phase, _ := newPhase(creds, &fakeCluster{})
			ctx := newContext(t, testfx.NewParamsBuilder().WithStateDir(t.TempDir()).Build())
			ctx.State.Outputs = tt.outputs

			require.NoError(t, phase.Provision(ctx))

			assert.Equal(t, azcli.Cluster{
				SubscriptionID: testfx.SubscriptionID,
				ResourceGroup:  "rg-akslab-abc123",
				Name:           tt.want,
			}, creds.got)
		})
	}
}

func TestApplyCommand(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"kubectl apply --server-side -f manifests/20-rbac.yaml --kubeconfig /tmp/kc",
		ApplyCommand("manifests/20-rbac.yaml", "/tmp/kc"))
}
