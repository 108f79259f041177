package azcli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output map[string][]byte
	fail   map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.output[name], f.fail[name]
}

var testCluster = Cluster{SubscriptionID: "sub", ResourceGroup: "rg-akslab-abc123", Name: "akslababc123-aks"}

func TestGetCredentials(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	cli := &CLI{Runner: runner}

	require.NoError(t, cli.GetCredentials(context.Background(), testCluster, "/tmp/kubeconfig"))
	require.Len(t, runner.calls, 2)

	assert.Equal(t, "az", runner.calls[0].name)
	got := strings.Join(runner.calls[0].args, " ")
	assert.Contains(t, got, "aks get-credentials")
	assert.Contains(t, got, "--resource-group rg-akslab-abc123")
	assert.Contains(t, got, "--name akslababc123-aks")
	assert.Contains(t, got, "--file /tmp/kubeconfig")

	assert.Equal(t, "kubelogin", runner.calls[1].name)
	assert.Equal(t, []string{"convert-kubeconfig", "-l", "azurecli", "--kubeconfig", "/tmp/kubeconfig"}, runner.calls[1].args)
}

func TestGetCredentials_AzFailureSkipsKubelogin(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{fail: map[string]error{"az": errors.New("exit status 1")}}
	cli := &CLI{Runner: runner}

	err := cli.GetCredentials(context.Background(), testCluster, "/tmp/kubeconfig")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch cluster credentials")
	assert.Len(t, runner.calls, 1)
}

func TestCredentialCommands(t *testing.T) {
	t.Parallel()
	cmd := CredentialCommands(testCluster, "/home/u/.akslab/abc123/kubeconfig")
	assert.True(t, strings.HasPrefix(cmd, "az aks get-credentials"))
	assert.Contains(t, cmd, "&& kubelogin convert-kubeconfig -l azurecli --kubeconfig /home/u/.akslab/abc123/kubeconfig")
}

func TestShowAccount(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{output: map[string][]byte{
		"az": []byte(`{"id":"sub","name":"Lab","tenantId":"tenant","user":{"name":"me@example.com","type":"user"}}`),
	}}
	cli := &CLI{Runner: runner}

	acct, err := cli.ShowAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sub", acct.SubscriptionID)
	assert.Equal(t, "me@example.com", acct.User.Name)

	runner.output["az"] = []byte("not json")
	_, err = cli.ShowAccount(context.Background())
	assert.ErrorContains(t, err, "failed to parse")
}
