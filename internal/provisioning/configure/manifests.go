package configure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/k8s"
	"github.com/imamik/akslab/internal/provisioning"
)

// applyManifest applies one file. It never returns an error; the outcome
// is in the result.
func (p *Phase) applyManifest(ctx *provisioning.Context, client k8s.Client, path string) provisioning.ManifestResult {
	result := provisioning.ManifestResult{
		Path:     path,
		FollowUp: ApplyCommand(path, ctx.State.Configure.Kubeconfig),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		result.Status = provisioning.ManifestMissing
		result.Err = failure.MissingFile(path, err)
		ctx.Observer.Event(provisioning.Event{
			Type:     provisioning.EventPhaseWarning,
			Phase:    phase,
			Message:  "Manifest not found, skipping",
			Resource: path,
		})
		return result
	}
	if err != nil {
		return p.failed(ctx, result, err)
	}

	applyCtx, cancel := context.WithTimeout(ctx, ctx.Timeouts.ManifestApply)
	defer cancel()

	n, err := client.ApplyManifests(applyCtx, data, k8s.FieldManager)
	if err != nil {
		result.Objects = n
		return p.failed(ctx, result, err)
	}

	result.Status = provisioning.ManifestApplied
	result.Objects = n
	provisioning.LogResourceCreated(ctx.Observer, phase, "manifest", path, fmt.Sprintf("%d objects", n))
	return result
}

func (p *Phase) failed(ctx *provisioning.Context, result provisioning.ManifestResult, err error) provisioning.ManifestResult {
	result.Status = provisioning.ManifestFailed
	result.Err = failure.ManifestFailure(result.Path, err, result.FollowUp)
	provisioning.LogResourceFailed(ctx.Observer, phase, "manifest", result.Path, err)
	return result
}

// ApplyCommand returns the kubectl command that applies path by hand.
func ApplyCommand(path, kubeconfig string) string {
	return fmt.Sprintf("kubectl apply --server-side -f %s --kubeconfig %s", path, kubeconfig)
}
