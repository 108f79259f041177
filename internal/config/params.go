package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/util/labels"
	"github.com/imamik/akslab/internal/util/naming"
)

// Params is the validated parameter set of one deployment. It is built once
// by the Collector and passed by value to every stage; the slice and map
// fields are cloned on construction and must be treated as read-only.
type Params struct {
	Suffix             string
	SubscriptionID     string
	Location           string
	AdminGroupObjectID string
	// AuthorizedIPRange is always a normalized IPv4 CIDR.
	AuthorizedIPRange string
	LogRetentionDays  int
	KubernetesVersion string
	SystemNodeVMSize  string
	UserNodeVMSize    string

	EnableDefender          bool
	EnableAzurePolicy       bool
	EnableSentinelSolutions bool
	RouteActivityLog        bool

	Tags map[string]string
	// Manifests are applied to the cluster in order.
	Manifests    []string
	SSHPublicKey string
	// StateDir is the root directory for lab records and kubeconfigs.
	StateDir string
}

// ResourceGroup returns the lab resource group name.
func (p Params) ResourceGroup() string {
	return naming.ResourceGroup(p.Suffix)
}

// NamePrefix returns the prefix shared by all lab resources.
func (p Params) NamePrefix() string {
	return naming.NamePrefix(p.Suffix)
}

// ClusterName returns the computed AKS cluster name.
func (p Params) ClusterName() string {
	return naming.Cluster(p.NamePrefix())
}

// LabDir returns the directory holding this lab's local state.
func (p Params) LabDir() string {
	return filepath.Join(p.StateDir, p.Suffix)
}

// KubeconfigPath returns the lab-scoped kubeconfig written by the
// credential step.
func (p Params) KubeconfigPath() string {
	return filepath.Join(p.LabDir(), "kubeconfig")
}

// RunsSubscriptionStage reports whether any subscription-scoped setting is
// requested.
func (p Params) RunsSubscriptionStage() bool {
	return p.EnableDefender || p.RouteActivityLog
}

// Validate checks every field once, before any stage runs.
func (p Params) Validate() error {
	var errs []error

	if !naming.ValidSuffix(p.Suffix) {
		errs = append(errs, failure.InvalidParameter("suffix", p.Suffix, errors.New("must be 6 lowercase alphanumeric characters")))
	}
	if p.SubscriptionID == "" {
		errs = append(errs, failure.MissingParameter("subscriptionId", "pass --subscription-id or set AZURE_SUBSCRIPTION_ID"))
	} else if _, err := uuid.Parse(p.SubscriptionID); err != nil {
		errs = append(errs, failure.InvalidParameter("subscriptionId", p.SubscriptionID, err))
	}
	if region, err := NormalizeRegion(p.Location); err != nil {
		errs = append(errs, failure.InvalidParameter("location", p.Location, err))
	} else if region != p.Location {
		errs = append(errs, failure.InvalidParameter("location", p.Location, fmt.Errorf("not normalized, expected %s", region)))
	}
	if _, err := uuid.Parse(p.AdminGroupObjectID); err != nil {
		errs = append(errs, failure.InvalidParameter("adminGroupObjectId", p.AdminGroupObjectID, err))
	}
	if cidr, err := NormalizeAuthorizedIP(p.AuthorizedIPRange); err != nil {
		errs = append(errs, failure.InvalidParameter("authorizedIpRange", p.AuthorizedIPRange, err))
	} else if cidr != p.AuthorizedIPRange {
		errs = append(errs, failure.InvalidParameter("authorizedIpRange", p.AuthorizedIPRange, fmt.Errorf("not normalized, expected %s", cidr)))
	}
	if p.LogRetentionDays < MinLogRetentionDays || p.LogRetentionDays > MaxLogRetentionDays {
		errs = append(errs, failure.InvalidParameter("logRetentionDays", fmt.Sprint(p.LogRetentionDays),
			fmt.Errorf("must be between %d and %d", MinLogRetentionDays, MaxLogRetentionDays)))
	}
	if p.KubernetesVersion == "" {
		errs = append(errs, failure.MissingParameter("kubernetesVersion", ""))
	}
	if p.SystemNodeVMSize == "" {
		errs = append(errs, failure.MissingParameter("systemNodeVmSize", ""))
	}
	if p.UserNodeVMSize == "" {
		errs = append(errs, failure.MissingParameter("userNodeVmSize", ""))
	}
	if err := labels.Validate(p.Tags); err != nil {
		errs = append(errs, failure.InvalidParameter("tags", "", err))
	}
	if p.SSHPublicKey == "" {
		errs = append(errs, failure.MissingParameter("sshPublicKey", "pass --ssh-public-key or let akslab generate one"))
	}
	if p.StateDir == "" {
		errs = append(errs, failure.MissingParameter("stateDir", ""))
	}

	return errors.Join(errs...)
}

// clone returns p with its reference fields copied.
func (p Params) clone() Params {
	p.Tags = maps.Clone(p.Tags)
	p.Manifests = slices.Clone(p.Manifests)
	return p
}
