package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/provisioning/destroy"
)

// ErrNotConfirmed is returned when the user declines the destroy prompt.
var ErrNotConfirmed = errors.New("destroy not confirmed")

// Factory function variables for destroy - can be replaced in tests.
var (
	// newDestroyProvisioner creates a new destroy provisioner.
	newDestroyProvisioner = func(record *labstate.Record, store labstate.Store, opts destroy.Options) provisioning.Phase {
		return destroy.NewProvisioner(record, store, opts)
	}
)

// DestroyOptions are the destroy command's flags.
type DestroyOptions struct {
	Suffix     string
	PurgeVault bool
	Yes        bool

	ConfigFile string
	EnvFile    string
	Verbose    bool
}

// Destroy handles the destroy command.
//
// It loads the lab record written during deploy, deletes the resource group
// and then removes the subscription-scoped objects the lab created. The
// record is only removed when every step succeeded.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	settings, err := loadSettings(config.SettingsOptions{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile})
	if err != nil {
		return err
	}

	store := labstate.Store{Dir: settings.StateDir}
	record, err := store.Load(opts.Suffix)
	if err != nil {
		return err
	}

	if err := confirmDestroy(ctx, record, opts.Yes); err != nil {
		return err
	}

	timeouts := loadTimeouts()
	cred, err := newCredential()
	if err != nil {
		return err
	}
	client, err := newAzureClient(record.SubscriptionID, cred, timeouts)
	if err != nil {
		return err
	}

	observer := newObserver(opts.Verbose).WithFields(map[string]string{"lab": record.Suffix})
	pCtx := provisioning.NewContext(ctx, destroy.Params(record, store.Dir), client, observer)
	pCtx.Timeouts = timeouts
	pCtx.Interactive = isInteractive()

	destroyer := newDestroyProvisioner(record, store, destroy.Options{PurgeVault: opts.PurgeVault})
	if err := provisioning.RunPhases(pCtx, []provisioning.Phase{destroyer}); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	if pCtx.State.Degraded() {
		return fmt.Errorf("lab %s only partly destroyed: %d cleanup step(s) failed", record.Suffix, len(pCtx.State.Warnings))
	}
	return nil
}

func confirmDestroy(ctx context.Context, record *labstate.Record, yes bool) error {
	if yes {
		return nil
	}
	if !isInteractiveInput() {
		return fmt.Errorf("%w: pass --yes to destroy lab %s without a prompt", ErrNotConfirmed, record.Suffix)
	}
	ok, err := newConfirmer().Confirm(ctx,
		fmt.Sprintf("Destroy lab %s?", record.Suffix),
		fmt.Sprintf("Deletes resource group %s and the lab's subscription-scoped settings. This cannot be undone.",
			record.ResourceGroup))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}
