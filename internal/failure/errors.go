// Package failure defines the error taxonomy for lab deployments.
//
// Every error carries a sentinel so callers can classify it with errors.Is,
// and a Hint with the follow-up a user can act on. Fatal reports whether an
// error must abort the remaining pipeline stages.
package failure

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrMissingTool indicates a required client tool is not on PATH.
	ErrMissingTool = errors.New("missing prerequisite tool")

	// ErrMissingFile indicates a file the user explicitly named does not exist.
	ErrMissingFile = errors.New("missing required file")

	// ErrMissingParameter indicates no source resolved a required parameter.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrInvalidParameter indicates a supplied parameter failed validation.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDeploymentFailed indicates a deployment reached a non-succeeded terminal state.
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrCredentials indicates the cluster credential step failed.
	ErrCredentials = errors.New("credential configuration failed")

	// ErrManifestApply indicates a manifest could not be applied.
	ErrManifestApply = errors.New("manifest apply failed")
)

// Scope identifies where a deployment was submitted.
type Scope string

const (
	// ScopeResourceGroup is a deployment scoped to the lab resource group.
	ScopeResourceGroup Scope = "resource-group"
	// ScopeSubscription is a deployment scoped to the subscription.
	ScopeSubscription Scope = "subscription"
)

// DetailError captures structured error information.
type DetailError struct {
	// Kind is the error category.
	Kind string

	// Message is the specific description.
	Message string

	// Field names the parameter the error is about (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error.
	Cause error

	sentinel error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind)
	if e.Field != "" {
		b.WriteString(" (")
		b.WriteString(e.Field)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		fmt.Fprintf(&b, "\n  %s: %s", k, e.Context[k])
	}
	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DetailError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.sentinel}
	}
	return []error{e.sentinel, e.Cause}
}

// MissingTool creates an error for a required tool that is not installed.
func MissingTool(tools []string, hint string) error {
	return &DetailError{
		Kind:     ErrMissingTool.Error(),
		Message:  strings.Join(tools, ", "),
		Hint:     hint,
		sentinel: ErrMissingTool,
	}
}

// MissingFile creates an error for a file that was named but does not exist.
func MissingFile(path string, cause error) error {
	return &DetailError{
		Kind:     ErrMissingFile.Error(),
		Message:  path,
		Cause:    cause,
		sentinel: ErrMissingFile,
	}
}

// MissingParameter creates an error for a required field no source resolved.
func MissingParameter(field, hint string) error {
	return &DetailError{
		Kind:     ErrMissingParameter.Error(),
		Field:    field,
		Message:  "no value supplied and no fallback resolved it",
		Hint:     hint,
		sentinel: ErrMissingParameter,
	}
}

// InvalidParameter creates an error for a field whose value failed validation.
func InvalidParameter(field, value string, cause error) error {
	return &DetailError{
		Kind:     ErrInvalidParameter.Error(),
		Field:    field,
		Message:  fmt.Sprintf("%q", value),
		Cause:    cause,
		sentinel: ErrInvalidParameter,
	}
}

// DeploymentError reports a deployment that did not succeed.
type DeploymentError struct {
	Scope      Scope
	Deployment string
	State      string
	PortalURL  string
	Cause      error
}

// Error implements the error interface.
func (e *DeploymentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s deployment %q failed", e.Scope, e.Deployment)
	if e.State != "" {
		fmt.Fprintf(&b, " (state: %s)", e.State)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.PortalURL != "" {
		fmt.Fprintf(&b, "\nSee the deployment history for details: %s", e.PortalURL)
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DeploymentError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDeploymentFailed}
	}
	return []error{ErrDeploymentFailed, e.Cause}
}

// CredentialFailure creates an error for a failed cluster credential step.
// followUp is the command the user can run to finish the step by hand.
func CredentialFailure(cause error, followUp string) error {
	return &DetailError{
		Kind:     ErrCredentials.Error(),
		Cause:    cause,
		Hint:     followUp,
		sentinel: ErrCredentials,
	}
}

// ManifestFailure creates an error for a single manifest that did not apply.
func ManifestFailure(path string, cause error, followUp string) error {
	return &DetailError{
		Kind:     ErrManifestApply.Error(),
		Message:  path,
		Cause:    cause,
		Hint:     followUp,
		sentinel: ErrManifestApply,
	}
}

// Fatal reports whether err must abort the pipeline.
// Subscription-scope deployment failures, credential failures and manifest
// failures degrade the result but never abort it.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	var depErr *DeploymentError
	if errors.As(err, &depErr) {
		return depErr.Scope != ScopeSubscription
	}
	if errors.Is(err, ErrCredentials) || errors.Is(err, ErrManifestApply) {
		return false
	}
	return true
}
