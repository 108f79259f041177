package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/akslab/internal/failure"
)

func validParams() Params {
	return Params{
		Suffix:             "abc123",
		SubscriptionID:     testSub,
		Location:           "westeurope",
		AdminGroupObjectID: testGroup,
		AuthorizedIPRange:  "203.0.113.7/32",
		LogRetentionDays:   30,
		KubernetesVersion:  "1.32",
		SystemNodeVMSize:   DefaultSystemNodeVMSize,
		UserNodeVMSize:     DefaultUserNodeVMSize,
		RouteActivityLog:   true,
		SSHPublicKey:       "ssh-rsa AAAA",
		StateDir:           "/tmp/akslab",
	}
}

func TestParams_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, validParams().Validate())

	tests := []struct {
		name     string
		mutate   func(*Params)
		sentinel error
		field    string
	}{
		{"bad suffix", func(p *Params) { p.Suffix = "ABC" }, failure.ErrInvalidParameter, "suffix"},
		{"no subscription", func(p *Params) { p.SubscriptionID = "" }, failure.ErrMissingParameter, "subscriptionId"},
		{"region not allowed", func(p *Params) { p.Location = "moon" }, failure.ErrInvalidParameter, "location"},
		{"region not normalized", func(p *Params) { p.Location = "West Europe" }, failure.ErrInvalidParameter, "location"},
		{"group not a guid", func(p *Params) { p.AdminGroupObjectID = "admins" }, failure.ErrInvalidParameter, "adminGroupObjectId"},
		{"ip without prefix", func(p *Params) { p.AuthorizedIPRange = "203.0.113.7" }, failure.ErrInvalidParameter, "authorizedIpRange"},
		{"retention too short", func(p *Params) { p.LogRetentionDays = 7 }, failure.ErrInvalidParameter, "logRetentionDays"},
		{"no ssh key", func(p *Params) { p.SSHPublicKey = "" }, failure.ErrMissingParameter, "sshPublicKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParams_Validate_SSHKeyHintNamesDeployFlag(t *testing.T) {
	t.Parallel()
	p := validParams()
	p.SSHPublicKey = ""

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --ssh-public-key or")
	assert.NotContains(t, err.Error(), "--ssh-public-key-file")
}

func TestParams_DerivedNames(t *testing.T) {
	t.Parallel()
	p := validParams()

	assert.Equal(t, "rg-akslab-abc123", p.ResourceGroup())
	assert.Equal(t, "akslababc123", p.NamePrefix())
	assert.Equal(t, "akslababc123-aks", p.ClusterName())
	assert.Equal(t, filepath.Join("/tmp/akslab", "abc123", "kubeconfig"), p.KubeconfigPath())
}

func TestParams_RunsSubscriptionStage(t *testing.T) {
	t.Parallel()
	p := validParams()
	p.EnableDefender, p.RouteActivityLog = false, false
	assert.False(t, p.RunsSubscriptionStage())

	p.EnableDefender = true
	assert.True(t, p.RunsSubscriptionStage())

	p.EnableDefender, p.RouteActivityLog = false, true
	assert.True(t, p.RunsSubscriptionStage())
}

func TestParams_PassedByValue(t *testing.T) {
	t.Parallel()
	p := validParams()
	p.Tags = map[string]string{"a": "1"}
	q := p.clone()
	q.Tags["a"] = "2"
	assert.Equal(t, "1", p.Tags["a"])
}
