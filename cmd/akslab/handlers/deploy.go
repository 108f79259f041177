package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/provisioning/configure"
	"github.com/imamik/akslab/internal/provisioning/deploy"
	"github.com/imamik/akslab/internal/provisioning/report"
)

// DeployOptions are the deploy command's flags.
type DeployOptions struct {
	// Params holds the explicitly given parameter values.
	Params config.Options

	ConfigFile     string
	EnvFile        string
	NonInteractive bool
	TemplateFile   string
	MetricsFile    string
	Verbose        bool
}

// Deploy creates a new lab.
//
// The flow is:
//  1. Load settings (.env, akslab.yaml, AKSLAB_*) and check that az is installed
//  2. Resolve every parameter (flags, settings, detection, prompts, defaults)
//  3. Run the pipeline: validate, record, deploy-rg, deploy-sub, configure, report
//  4. Store the final lab status and, when asked, the stage metrics
//
// Only a fatal stage error is returned; degraded runs still succeed.
func Deploy(ctx context.Context, opts DeployOptions) error {
	settings, err := loadSettings(config.SettingsOptions{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile})
	if err != nil {
		return err
	}

	if err := checkPrerequisites(); err != nil {
		return err
	}

	timeouts := loadTimeouts()
	cred, err := newCredential()
	if err != nil {
		return err
	}
	lister, err := newSubscriptionLister(cred)
	if err != nil {
		return err
	}

	collector := &config.Collector{
		Settings:      *settings,
		Prompter:      newPrompter(),
		Interactive:   !opts.NonInteractive && isInteractiveInput(),
		Subscriptions: lister,
		IPDetector:    newIPDetector(timeouts.IPLookup),
	}
	res, err := collector.Collect(ctx, opts.Params)
	if err != nil {
		return err
	}
	params := res.Params

	client, err := newAzureClient(params.SubscriptionID, cred, timeouts)
	if err != nil {
		return err
	}

	observer := newObserver(opts.Verbose).WithFields(map[string]string{"lab": params.Suffix})
	for _, w := range res.Warnings {
		observer.Event(provisioning.Event{Type: provisioning.EventValidationWarning, Phase: "collect", Message: w})
	}

	pCtx := provisioning.NewContext(ctx, params, client, observer)
	pCtx.Timeouts = timeouts
	pCtx.Interactive = isInteractive()
	pCtx.Metrics = provisioning.NewMetrics()

	record := deploy.NewRecordPhase(labstate.Store{Dir: params.StateDir})
	phases := []provisioning.Phase{
		provisioning.NewValidationPhase(),
		record,
		deploy.NewResourceGroupPhase(opts.TemplateFile),
		deploy.NewSubscriptionPhase(),
		configure.NewPhase(newCredentialFetcher()),
		report.NewPhase(stdout),
	}

	runErr := provisioning.RunPhases(pCtx, phases)

	if err := record.Finalize(pCtx, runErr); err != nil {
		observer.Printf("Warning: %v", err)
	}
	if err := pCtx.Metrics.WriteToTextfile(opts.MetricsFile); err != nil {
		observer.Printf("Warning: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("lab %s: %w", params.Suffix, runErr)
	}
	return nil
}

// checkPrerequisites fails when a required client tool is missing.
func checkPrerequisites() error {
	results := checkDefaultPrereqs()
	if results.HasErrors() {
		return results.Error()
	}
	return nil
}
