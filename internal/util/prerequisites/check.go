// Package prerequisites provides utilities for checking required client tools.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/imamik/akslab/internal/failure"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string

	// VersionArgs are the arguments that print the tool version.
	VersionArgs []string
}

// DefaultTools returns the tools a deployment cannot run without.
// az is required for credential conversion and cluster credentials.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "az",
			Required:    true,
			Description: "Required for signing in and fetching cluster credentials",
			InstallURL:  "https://learn.microsoft.com/cli/azure/install-azure-cli",
			VersionArgs: []string{"version", "--output", "tsv", "--query", `"azure-cli"`},
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "kubelogin",
			Required:    false,
			Description: "Converts the lab kubeconfig to Entra ID authentication",
			InstallURL:  "https://azure.github.io/kubelogin/install.html",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "kubectl",
			Required:    false,
			Description: "Useful for inspecting the lab cluster and re-applying manifests",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
			VersionArgs: []string{"version", "--client"},
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns a MissingTool error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing, urls []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, tool.Name)
			urls = append(urls, fmt.Sprintf("%s: %s", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return failure.MissingTool(missing, "install "+strings.Join(urls, ", "))
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = getToolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckDefault checks the default required tools.
func CheckDefault() *CheckResults {
	return Check(DefaultTools())
}

// CheckAll checks all tools (default + optional).
func CheckAll() *CheckResults {
	defaults := DefaultTools()
	optional := OptionalTools()
	all := make([]Tool, 0, len(defaults)+len(optional))
	all = append(all, defaults...)
	all = append(all, optional...)
	return Check(all)
}

// getToolVersion returns the first line of the tool's version output, or
// an empty string if it cannot be determined.
func getToolVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	// #nosec G204 - path and args come from trusted Tool definitions
	output, err := exec.Command(path, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.Trim(strings.TrimSpace(line), `"`)
}
