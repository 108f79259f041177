package testing

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/util/labels"
)

// Identifiers used by the default parameter set.
const (
	Suffix         = "abc123"
	SubscriptionID = "00000000-0000-0000-0000-000000000001"
	AdminGroupID   = "00000000-0000-0000-0000-000000000002"
)

// ParamsBuilder provides a fluent interface for constructing test parameter sets.
// Each method returns a new builder (immutable) for chaining.
type ParamsBuilder struct {
	p config.Params
}

// NewParamsBuilder creates a new ParamsBuilder whose Build result passes
// Params.Validate.
func NewParamsBuilder() *ParamsBuilder {
	return &ParamsBuilder{
		p: config.Params{
			Suffix:                  Suffix,
			SubscriptionID:          SubscriptionID,
			Location:                "westeurope",
			AdminGroupObjectID:      AdminGroupID,
			AuthorizedIPRange:       "203.0.113.7/32",
			LogRetentionDays:        config.DefaultLogRetentionDays,
			KubernetesVersion:       config.DefaultKubernetesVersion,
			SystemNodeVMSize:        config.DefaultSystemNodeVMSize,
			UserNodeVMSize:          config.DefaultUserNodeVMSize,
			EnableAzurePolicy:       true,
			EnableSentinelSolutions: true,
			Tags:                    labels.NewTagBuilder(Suffix).Build(),
			SSHPublicKey:            "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC7 akslab",
			StateDir:                filepath.Join("testdata", "state"),
		},
	}
}

// WithSuffix sets the lab identifier and the matching lab tag.
func (b *ParamsBuilder) WithSuffix(suffix string) *ParamsBuilder {
	nb := b.clone()
	nb.p.Suffix = suffix
	nb.p.Tags = labels.NewTagBuilder(suffix).Build()
	return nb
}

// WithLocation sets the region.
func (b *ParamsBuilder) WithLocation(location string) *ParamsBuilder {
	nb := b.clone()
	nb.p.Location = location
	return nb
}

// WithAuthorizedIP sets the normalized authorized range.
func (b *ParamsBuilder) WithAuthorizedIP(cidr string) *ParamsBuilder {
	nb := b.clone()
	nb.p.AuthorizedIPRange = cidr
	return nb
}

// WithDefender toggles Defender plans.
func (b *ParamsBuilder) WithDefender(enabled bool) *ParamsBuilder {
	nb := b.clone()
	nb.p.EnableDefender = enabled
	return nb
}

// WithActivityLog toggles activity log routing.
func (b *ParamsBuilder) WithActivityLog(enabled bool) *ParamsBuilder {
	nb := b.clone()
	nb.p.RouteActivityLog = enabled
	return nb
}

// WithAzurePolicy toggles the governance modules.
func (b *ParamsBuilder) WithAzurePolicy(enabled bool) *ParamsBuilder {
	nb := b.clone()
	nb.p.EnableAzurePolicy = enabled
	return nb
}

// WithSentinel toggles Sentinel onboarding.
func (b *ParamsBuilder) WithSentinel(enabled bool) *ParamsBuilder {
	nb := b.clone()
	nb.p.EnableSentinelSolutions = enabled
	return nb
}

// WithKubernetesVersion sets the cluster version.
func (b *ParamsBuilder) WithKubernetesVersion(v string) *ParamsBuilder {
	nb := b.clone()
	nb.p.KubernetesVersion = v
	return nb
}

// WithManifests sets the ordered manifest list.
func (b *ParamsBuilder) WithManifests(paths ...string) *ParamsBuilder {
	nb := b.clone()
	nb.p.Manifests = slices.Clone(paths)
	return nb
}

// WithStateDir sets the local state root.
func (b *ParamsBuilder) WithStateDir(dir string) *ParamsBuilder {
	nb := b.clone()
	nb.p.StateDir = dir
	return nb
}

// Build returns the constructed parameter set.
func (b *ParamsBuilder) Build() config.Params {
	return b.clone().p
}

// clone creates a deep copy of the builder for immutability.
func (b *ParamsBuilder) clone() *ParamsBuilder {
	p := b.p
	p.Tags = maps.Clone(b.p.Tags)
	p.Manifests = slices.Clone(b.p.Manifests)
	return &ParamsBuilder{p: p}
}

// MinimalParams returns a valid parameter set with every optional feature off.
func MinimalParams() config.Params {
	return NewParamsBuilder().
		WithAzurePolicy(false).
		WithSentinel(false).
		Build()
}

// FullParams returns a parameter set with every feature on.
func FullParams() config.Params {
	return NewParamsBuilder().
		WithDefender(true).
		WithActivityLog(true).
		Build()
}
