// Package azcli runs the Azure CLI and kubelogin for the steps that have no
// SDK equivalent: writing an Entra ID kubeconfig for a managed cluster.
package azcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - arguments are built from validated lab parameters
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("%s %s: %w\nOutput: %s", name, strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return out.Bytes(), nil
}

// CLI wraps az and kubelogin.
type CLI struct {
	Runner Runner
}

// New returns a CLI that executes real commands.
func New() *CLI {
	return &CLI{Runner: ExecRunner{}}
}

// Cluster identifies a managed cluster.
type Cluster struct {
	SubscriptionID string
	ResourceGroup  string
	Name           string
}

func (c Cluster) credentialArgs(kubeconfigPath string) []string {
	return []string{
		"aks", "get-credentials",
		"--subscription", c.SubscriptionID,
		"--resource-group", c.ResourceGroup,
		"--name", c.Name,
		"--file", kubeconfigPath,
		"--overwrite-existing",
		"--only-show-errors",
	}
}

func convertArgs(kubeconfigPath string) []string {
	return []string{"convert-kubeconfig", "-l", "azurecli", "--kubeconfig", kubeconfigPath}
}

// CredentialCommands returns the shell commands that bind a kubeconfig to
// the cluster, for users finishing the step by hand.
func CredentialCommands(c Cluster, kubeconfigPath string) string {
	return "az " + strings.Join(c.credentialArgs(kubeconfigPath), " ") +
		" && kubelogin " + strings.Join(convertArgs(kubeconfigPath), " ")
}

// GetCredentials writes the cluster kubeconfig to kubeconfigPath and
// converts it to use the Azure CLI login for Entra ID authentication.
func (cli *CLI) GetCredentials(ctx context.Context, c Cluster, kubeconfigPath string) error {
	if _, err := cli.Runner.Run(ctx, "az", c.credentialArgs(kubeconfigPath)...); err != nil {
		return fmt.Errorf("failed to fetch cluster credentials: %w", err)
	}
	if _, err := cli.Runner.Run(ctx, "kubelogin", convertArgs(kubeconfigPath)...); err != nil {
		return fmt.Errorf("failed to convert kubeconfig: %w", err)
	}
	return nil
}

// Account is the signed-in Azure CLI account.
type Account struct {
	SubscriptionID string `json:"id"`
	Name           string `json:"name"`
	TenantID       string `json:"tenantId"`
	User           struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// ShowAccount returns the active Azure CLI account.
func (cli *CLI) ShowAccount(ctx context.Context) (*Account, error) {
	out, err := cli.Runner.Run(ctx, "az", "account", "show", "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("not signed in to the Azure CLI: %w", err)
	}
	var acct Account
	if err := json.Unmarshal(out, &acct); err != nil {
		return nil, fmt.Errorf("failed to parse az account show output: %w", err)
	}
	return &acct, nil
}
