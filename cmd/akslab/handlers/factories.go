package handlers

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/config/wizard"
	"github.com/imamik/akslab/internal/platform/azcli"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/provisioning/configure"
	"github.com/imamik/akslab/internal/util/netutil"
	"github.com/imamik/akslab/internal/util/prerequisites"
)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadSettings reads .env, akslab.yaml and AKSLAB_* variables.
	loadSettings = config.LoadSettings

	// loadTimeouts reads the AKSLAB_TIMEOUT_* variables.
	loadTimeouts = config.LoadTimeouts

	// checkDefaultPrereqs runs prerequisite checks.
	checkDefaultPrereqs = prerequisites.CheckDefault

	// checkAllPrereqs checks required and optional tools.
	checkAllPrereqs = prerequisites.CheckAll

	// newCredential creates the Azure credential.
	newCredential = azure.NewCredential

	// verifyCredential proves the credential can reach Resource Manager.
	verifyCredential = azure.VerifyCredential

	// newAzureClient creates a subscription-bound Azure client.
	newAzureClient = func(subscriptionID string, cred azcore.TokenCredential, t *config.Timeouts) (azure.Client, error) {
		c, err := azure.NewRealClient(subscriptionID, cred, azure.WithTimeouts(t))
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// newSubscriptionLister lists subscriptions before one is chosen.
	newSubscriptionLister = func(cred azcore.TokenCredential) (config.SubscriptionLister, error) {
		l, err := azure.NewSubscriptionLister(cred)
		if err != nil {
			return nil, err
		}
		return l, nil
	}

	// newPrompter creates the interactive prompter.
	newPrompter = func() config.Prompter {
		return &wizard.Prompter{}
	}

	// newConfirmer creates the destroy confirmation prompt.
	newConfirmer = func() Confirmer {
		return &wizard.Prompter{}
	}

	// newIPDetector creates the public IP lookup.
	newIPDetector = func(timeout time.Duration) config.IPDetector {
		return netutil.NewIPDetector(timeout)
	}

	// newCredentialFetcher runs az aks get-credentials and kubelogin.
	newCredentialFetcher = func() configure.CredentialFetcher {
		return azcli.New()
	}

	// newAzureCLI is used by doctor to show the signed-in account.
	newAzureCLI = azcli.New

	// newObserver creates the console transcript.
	newObserver = func(verbose bool) provisioning.Observer {
		return provisioning.NewConsoleObserver(os.Stderr, verbose)
	}

	// isInteractive reports whether spinners can be drawn on stdout.
	isInteractive = provisioning.IsTTY

	// isInteractiveInput reports whether prompts can read from stdin.
	isInteractiveInput = provisioning.IsInteractiveInput

	// stdout receives the summary and command output.
	stdout io.Writer = os.Stdout
)
