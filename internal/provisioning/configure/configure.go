package configure

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/k8s"
	"github.com/imamik/akslab/internal/platform/azcli"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/util/retry"
)

const (
	phase = "configure"

	apiServerPollInterval = 10 * time.Second
	credentialRetries     = 3
)

// CredentialFetcher writes a kubeconfig for a managed cluster.
type CredentialFetcher interface {
	GetCredentials(ctx context.Context, c azcli.Cluster, kubeconfigPath string) error
}

// ClientFactory opens a cluster client from a kubeconfig file.
type ClientFactory func(kubeconfigPath string) (k8s.Client, error)

// Phase is the post-deploy configuration stage.
type Phase struct {
	Credentials CredentialFetcher
	NewClient   ClientFactory

	// PollInterval is how often the API server is probed after credentials
	// are written.
	PollInterval time.Duration
	RetryOptions []retry.Option
}

// NewPhase creates the configure stage using the Azure CLI for credentials.
func NewPhase(credentials CredentialFetcher) *Phase {
	return &Phase{
		Credentials:  credentials,
		NewClient:    k8s.NewFromKubeconfigFile,
		PollInterval: apiServerPollInterval,
		RetryOptions: []retry.Option{
			retry.WithMaxRetries(credentialRetries),
			retry.WithInitialDelay(5 * time.Second),
		},
	}
}

// Name implements the provisioning.Phase interface.
func (p *Phase) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface. It always returns
// nil; problems are recorded as warnings and in State.Configure.
func (p *Phase) Provision(ctx *provisioning.Context) error {
	params := ctx.Params
	result := &ctx.State.Configure
	result.Ran = true
	result.Kubeconfig = params.KubeconfigPath()

	cluster := azcli.Cluster{
		SubscriptionID: params.SubscriptionID,
		ResourceGroup:  params.ResourceGroup(),
		Name:           config.ValueOr(ctx.State.Outputs, blueprint.OutputClusterName, params.ClusterName()).Value,
	}

	client, err := p.connect(ctx, cluster)
	if err != nil {
		followUp := azcli.CredentialCommands(cluster, result.Kubeconfig)
		result.CredentialsErr = failure.CredentialFailure(err, followUp)
		result.FollowUp = followUp
		ctx.State.Warn("cluster credentials not configured, %d manifests skipped: %v", len(params.Manifests), err)
		return nil
	}

	total := len(params.Manifests)
	for i, path := range params.Manifests {
		ctx.Observer.Progress(phase, i, total)
		mr := p.applyManifest(ctx, client, path)
		result.Manifests = append(result.Manifests, mr)
		if mr.Status != provisioning.ManifestApplied {
			ctx.State.Warn("manifest %s %s", path, mr.Status)
		}
	}
	if total > 0 {
		ctx.Observer.Progress(phase, total, total)
	}
	ctx.Observer.Printf("[%s] %d of %d manifests applied", phase, result.Applied(), total)
	return nil
}

// connect fetches credentials and waits until the API server answers.
func (p *Phase) connect(ctx *provisioning.Context, cluster azcli.Cluster) (k8s.Client, error) {
	kubeconfig := ctx.State.Configure.Kubeconfig

	if err := os.MkdirAll(ctx.Params.LabDir(), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lab directory: %w", err)
	}

	err := ctx.Wait(fmt.Sprintf("Fetching credentials for %s", cluster.Name), func() error {
		return retry.WithExponentialBackoff(ctx, func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, ctx.Timeouts.Credentials)
			defer cancel()
			return p.Credentials.GetCredentials(attemptCtx, cluster, kubeconfig)
		}, p.RetryOptions...)
	})
	if err != nil {
		return nil, err
	}
	ctx.Observer.Printf("[%s] Kubeconfig written to %s", phase, kubeconfig)

	client, err := p.NewClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	var version string
	err = ctx.Wait("Waiting for the API server", func() error {
		var werr error
		version, werr = k8s.WaitForAPIServer(ctx, client, p.PollInterval, ctx.Timeouts.APIServerWait)
		return werr
	})
	if err != nil {
		return nil, err
	}
	ctx.State.Configure.ServerVersion = version
	ctx.Observer.Printf("[%s] API server is up (Kubernetes %s)", phase, version)
	return client, nil
}
