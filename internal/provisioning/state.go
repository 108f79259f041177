package provisioning

import (
	"fmt"
	"maps"

	"github.com/imamik/akslab/internal/platform/azure"
)

// OutcomeStatus classifies the result of a best-effort stage.
type OutcomeStatus string

const (
	// OutcomeOK means the stage ran and succeeded.
	OutcomeOK OutcomeStatus = "ok"
	// OutcomeWarning means the stage ran and failed without aborting the run.
	OutcomeWarning OutcomeStatus = "warning"
	// OutcomeSkipped means the stage did not run.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// SubscriptionOutcome is the typed result of the subscription-scope
// deployment. Exactly one of Outputs (ok) or Reason (warning, skipped) is
// meaningful.
type SubscriptionOutcome struct {
	Status     OutcomeStatus
	Outputs    map[string]string
	Reason     string
	Deployment *azure.Deployment
}

// SubscriptionOK builds the outcome of a succeeded deployment.
func SubscriptionOK(d *azure.Deployment) SubscriptionOutcome {
	out := SubscriptionOutcome{Status: OutcomeOK, Deployment: d, Outputs: map[string]string{}}
	if d != nil {
		out.Outputs = maps.Clone(d.Outputs)
	}
	return out
}

// SubscriptionWarning builds the outcome of a failed deployment. d may be
// nil when the submission itself failed.
func SubscriptionWarning(reason string, d *azure.Deployment) SubscriptionOutcome {
	return SubscriptionOutcome{Status: OutcomeWarning, Reason: reason, Deployment: d}
}

// SubscriptionSkipped builds the outcome of a deployment that never ran.
func SubscriptionSkipped(reason string) SubscriptionOutcome {
	return SubscriptionOutcome{Status: OutcomeSkipped, Reason: reason}
}

// OK reports whether the subscription settings were applied.
func (o SubscriptionOutcome) OK() bool {
	return o.Status == OutcomeOK
}

// ManifestStatus is the per-file result of the manifest loop.
type ManifestStatus string

const (
	ManifestApplied ManifestStatus = "applied"
	ManifestMissing ManifestStatus = "missing"
	ManifestFailed  ManifestStatus = "failed"
)

// ManifestResult records what happened to one manifest file.
type ManifestResult struct {
	Path    string
	Status  ManifestStatus
	Objects int
	Err     error
	// FollowUp is the command that applies the file by hand.
	FollowUp string
}

// ConfigureResult records the post-deploy configuration stage.
type ConfigureResult struct {
	// Ran is false when the stage never started, e.g. after a fatal error.
	Ran        bool
	Kubeconfig string
	// CredentialsErr is set when the credential step failed. Manifests are
	// not attempted in that case.
	CredentialsErr error
	FollowUp       string
	ServerVersion  string
	Manifests      []ManifestResult
}

// CredentialsOK reports whether a kubeconfig was bound to the cluster.
func (r ConfigureResult) CredentialsOK() bool {
	return r.Ran && r.CredentialsErr == nil
}

// Applied counts the manifests that applied cleanly.
func (r ConfigureResult) Applied() int {
	n := 0
	for _, m := range r.Manifests {
		if m.Status == ManifestApplied {
			n++
		}
	}
	return n
}

// State holds the shared results of the pipeline stages.
// It is progressively populated as each stage completes and is read by
// later stages.
type State struct {
	// Deployment is the resource-group deployment result.
	Deployment *azure.Deployment
	// Outputs is the resource-group deployment output map.
	Outputs      map[string]string
	Subscription SubscriptionOutcome
	Configure    ConfigureResult
	// Warnings lists every non-fatal problem in the order it occurred.
	Warnings []string
}

// NewState creates an empty pipeline state.
func NewState() *State {
	return &State{
		Outputs:      make(map[string]string),
		Subscription: SubscriptionSkipped("not run"),
	}
}

// Warn records a non-fatal problem.
func (s *State) Warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Degraded reports whether any stage completed only partially.
func (s *State) Degraded() bool {
	return len(s.Warnings) > 0
}
