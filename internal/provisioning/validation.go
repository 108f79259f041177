package provisioning

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/Masterminds/semver/v3"

	"github.com/imamik/akslab/internal/failure"
)

// minKubernetesVersion is the oldest AKS minor still in standard support.
const minKubernetesVersion = ">= 1.30"

// ValidationError is a pre-flight finding.
type ValidationError struct {
	Field    string // Parameter that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase is the first stage: it re-checks the parameter set and
// adds pre-flight warnings that depend on the live subscription.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation stage.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validate"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	if err := ctx.Params.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, ve := range validate(ctx) {
		if ve.IsError() {
			errs = append(errs, failure.InvalidParameter(ve.Field, "", errors.New(ve.Message)))
			continue
		}
		ctx.Observer.Event(Event{Type: EventValidationWarning, Phase: vp.Name(), Message: ve.Message,
			Fields: map[string]string{"field": ve.Field}})
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if ctx.Azure != nil {
		exists, err := ctx.Azure.ResourceGroupExists(ctx, ctx.Params.ResourceGroup())
		if err != nil {
			return fmt.Errorf("checking resource group %s: %w", ctx.Params.ResourceGroup(), err)
		}
		if exists {
			ctx.Observer.Event(Event{Type: EventValidationWarning, Phase: vp.Name(),
				Message:  "resource group already exists, the deployment updates it in place",
				Resource: ctx.Params.ResourceGroup()})
		}
	}

	ctx.Observer.Printf("Lab %s in %s (subscription %s)", ctx.Params.Suffix, ctx.Params.Location, ctx.Params.SubscriptionID)
	return nil
}

// validate runs the checks Params.Validate does not cover.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	p := ctx.Params

	// --- Kubernetes version ---

	if v, err := semver.NewVersion(p.KubernetesVersion); err != nil {
		errs = append(errs, ValidationError{
			Field:    "kubernetesVersion",
			Message:  fmt.Sprintf("%q is not a version (e.g., '1.32' or '1.32.4')", p.KubernetesVersion),
			Severity: "error",
		})
	} else if c, _ := semver.NewConstraint(minKubernetesVersion); !c.Check(v) {
		errs = append(errs, ValidationError{
			Field:    "kubernetesVersion",
			Message:  fmt.Sprintf("%s is outside AKS standard support (%s)", p.KubernetesVersion, minKubernetesVersion),
			Severity: "warning",
		})
	}

	// --- Network ---

	if prefix, err := netip.ParsePrefix(p.AuthorizedIPRange); err == nil && prefix.Bits() < 24 {
		errs = append(errs, ValidationError{
			Field:    "authorizedIpRange",
			Message:  fmt.Sprintf("%s authorizes %d addresses to reach the API server", prefix, uint64(1)<<(32-prefix.Bits())),
			Severity: "warning",
		})
	}

	// --- Features ---

	if p.EnableSentinelSolutions && p.LogRetentionDays < 90 {
		errs = append(errs, ValidationError{
			Field:    "logRetentionDays",
			Message:  "Sentinel includes 90 days of retention, a shorter workspace retention discards data early",
			Severity: "warning",
		})
	}

	if len(p.Manifests) == 0 {
		errs = append(errs, ValidationError{
			Field:    "manifests",
			Message:  "no manifests configured, the cluster is left empty",
			Severity: "warning",
		})
	}

	return errs
}
