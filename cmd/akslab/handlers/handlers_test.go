package handlers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/failure"
	"github.com/imamik/akslab/internal/labstate"
	"github.com/imamik/akslab/internal/platform/azcli"
	"github.com/imamik/akslab/internal/platform/azure"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/provisioning/configure"
	testfx "github.com/imamik/akslab/internal/testing"
	"github.com/imamik/akslab/internal/util/keygen"
	"github.com/imamik/akslab/internal/util/prerequisites"
)

// saveAndRestoreFactories restores every factory variable after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadSettings := loadSettings
	origLoadTimeouts := loadTimeouts
	origCheckDefaultPrereqs := checkDefaultPrereqs
	origCheckAllPrereqs := checkAllPrereqs
	origNewCredential := newCredential
	origVerifyCredential := verifyCredential
	origNewAzureClient := newAzureClient
	origNewSubscriptionLister := newSubscriptionLister
	origNewPrompter := newPrompter
	origNewConfirmer := newConfirmer
	origNewIPDetector := newIPDetector
	origNewCredentialFetcher := newCredentialFetcher
	origNewAzureCLI := newAzureCLI
	origNewObserver := newObserver
	origIsInteractive := isInteractive
	origIsInteractiveInput := isInteractiveInput
	origStdout := stdout
	origNewDestroyProvisioner := newDestroyProvisioner

	t.Cleanup(func() {
		loadSettings = origLoadSettings
		loadTimeouts = origLoadTimeouts
		checkDefaultPrereqs = origCheckDefaultPrereqs
		checkAllPrereqs = origCheckAllPrereqs
		newCredential = origNewCredential
		verifyCredential = origVerifyCredential
		newAzureClient = origNewAzureClient
		newSubscriptionLister = origNewSubscriptionLister
		newPrompter = origNewPrompter
		newConfirmer = origNewConfirmer
		newIPDetector = origNewIPDetector
		newCredentialFetcher = origNewCredentialFetcher
		newAzureCLI = origNewAzureCLI
		newObserver = origNewObserver
		isInteractive = origIsInteractive
		isInteractiveInput = origIsInteractiveInput
		stdout = origStdout
		newDestroyProvisioner = origNewDestroyProvisioner
	})
}

type stubCredentials struct{ err error }

func (s stubCredentials) GetCredentials(_ context.Context, _ azcli.Cluster, _ string) error {
	return s.err
}

type stubConfirmer struct{ answer bool }

func (s stubConfirmer) Confirm(_ context.Context, _, _ string) (bool, error) {
	return s.answer, nil
}

type stubPrompter struct {
	answer string
	asked  []string
}

func (s *stubPrompter) Input(_ context.Context, q config.Question) (string, error) {
	s.asked = append(s.asked, q.Title)
	return s.answer, nil
}

func (s *stubPrompter) Select(_ context.Context, _ string, choices []config.Choice) (string, error) {
	return choices[0].Value, nil
}

type stubRunner struct {
	out []byte
	err error
}

func (s stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return s.out, s.err
}

type deployEnv struct {
	mock     *azure.MockClient
	observer *provisioning.MockObserver
	out      *bytes.Buffer
	stateDir string
}

// setupDeploy wires every factory to fakes so Deploy runs end to end
// without Azure, the az CLI or a terminal.
func setupDeploy(t *testing.T, mock *azure.MockClient) *deployEnv {
	t.Helper()
	saveAndRestoreFactories(t)

	env := &deployEnv{
		mock:     mock,
		observer: provisioning.NewMockObserver(),
		out:      &bytes.Buffer{},
		stateDir: t.TempDir(),
	}

	kp, err := keygen.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "id_rsa.pub")
	require.NoError(t, os.WriteFile(keyFile, kp.PublicKey, 0o600))

	manifests := testfx.WriteManifests(t, map[string]string{"00-namespaces.yaml": testfx.NamespaceManifest})

	loadSettings = func(config.SettingsOptions) (*config.Settings, error) {
		return &config.Settings{
			SubscriptionID:     testfx.SubscriptionID,
			Location:           "westeurope",
			AdminGroupObjectID: testfx.AdminGroupID,
			AuthorizedIP:       "203.0.113.7",
			LogRetentionDays:   config.DefaultLogRetentionDays,
			KubernetesVersion:  config.DefaultKubernetesVersion,
			SystemNodeVMSize:   config.DefaultSystemNodeVMSize,
			UserNodeVMSize:     config.DefaultUserNodeVMSize,
			EnableAzurePolicy:  true,
			ManifestsDir:       manifests,
			StateDir:           env.stateDir,
			SSHPublicKeyFile:   keyFile,
		}, nil
	}
	checkDefaultPrereqs = func() *prerequisites.CheckResults { return &prerequisites.CheckResults{} }
	newCredential = func() (azcore.TokenCredential, error) { return nil, nil }
	newSubscriptionLister = func(azcore.TokenCredential) (config.SubscriptionLister, error) { return mock, nil }
	newAzureClient = func(string, azcore.TokenCredential, *config.Timeouts) (azure.Client, error) { return mock, nil }
	newIPDetector = func(time.Duration) config.IPDetector { return nil }
	// The kubeconfig is never written, so the client cannot load it and
	// configure records a credential failure without retrying.
	newCredentialFetcher = func() configure.CredentialFetcher { return stubCredentials{} }
	newObserver = func(bool) provisioning.Observer { return env.observer }
	isInteractive = func() bool { return false }
	isInteractiveInput = func() bool { return false }
	stdout = env.out
	return env
}

func TestDeploy_Success(t *testing.T) {
	env := setupDeploy(t, testfx.NewAzureFixture().SuccessfulDeployment())
	metricsFile := filepath.Join(t.TempDir(), "akslab.prom")

	err := Deploy(context.Background(), DeployOptions{
		Params:         config.Options{},
		NonInteractive: true,
		MetricsFile:    metricsFile,
	})
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "Deployment completed successfully")
	assert.True(t, env.mock.Called("DeployToResourceGroup"))
	assert.False(t, env.mock.Called("DeployToSubscription"), "subscription stage disabled")
	assert.Equal(t, []string{
		"validate (1/6)", "record (2/6)", "deploy-rg (3/6)", "deploy-sub (4/6)", "configure (5/6)", "report (6/6)",
	}, env.observer.Sections())

	records, err := labstate.Store{Dir: env.stateDir}.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, labstate.StatusDegraded, records[0].Status, "credentials could not be bound")
	assert.NotEmpty(t, records[0].Outputs)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `akslab_pipeline_stage_total{outcome="skipped",stage="deploy-sub"} 1`)
}

func TestDeploy_PromptsFollowStdin(t *testing.T) {
	tests := []struct {
		name       string
		stdinTTY   bool
		stdoutTTY  bool
		wantPrompt bool
	}{
		{name: "stdout piped to tee", stdinTTY: true, stdoutTTY: false, wantPrompt: true},
		{name: "stdin redirected", stdinTTY: false, stdoutTTY: true, wantPrompt: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupDeploy(t, testfx.NewAzureFixture().SuccessfulDeployment())
			base := loadSettings
			loadSettings = func(opts config.SettingsOptions) (*config.Settings, error) {
				s, err := base(opts)
				s.Location = ""
				return s, err
			}
			prompter := &stubPrompter{answer: "westeurope"}
			newPrompter = func() config.Prompter { return prompter }
			isInteractiveInput = func() bool { return tt.stdinTTY }
			isInteractive = func() bool { return tt.stdoutTTY }

			err := Deploy(context.Background(), DeployOptions{})

			if tt.wantPrompt {
				require.NoError(t, err)
				assert.Len(t, prompter.asked, 1)
				return
			}
			assert.ErrorIs(t, err, failure.ErrMissingParameter)
			assert.Empty(t, prompter.asked)
		})
	}
}

func TestDeploy_ResourceGroupFailure(t *testing.T) {
	env := setupDeploy(t, testfx.NewAzureFixture().FailedResourceGroupDeployment())

	err := Deploy(context.Background(), DeployOptions{NonInteractive: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrDeploymentFailed)
	assert.Contains(t, err.Error(), "deploy-rg stage failed")
	assert.False(t, env.mock.Called("DeployToSubscription"))
	assert.NotContains(t, env.out.String(), "Deployment completed successfully")

	records, err := labstate.Store{Dir: env.stateDir}.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, labstate.StatusFailed, records[0].Status)
}

func TestDeploy_MissingPrerequisite(t *testing.T) {
	setupDeploy(t, testfx.NewAzureFixture().SuccessfulDeployment())
	checkDefaultPrereqs = func() *prerequisites.CheckResults {
		return &prerequisites.CheckResults{Missing: []prerequisites.Tool{{Name: "az", Required: true}}}
	}
	credentialCreated := false
	newCredential = func() (azcore.TokenCredential, error) {
		credentialCreated = true
		return nil, nil
	}

	err := Deploy(context.Background(), DeployOptions{NonInteractive: true})

	assert.ErrorIs(t, err, failure.ErrMissingTool)
	assert.False(t, credentialCreated)
}

func TestDeploy_SettingsError(t *testing.T) {
	saveAndRestoreFactories(t)
	loadSettings = func(config.SettingsOptions) (*config.Settings, error) {
		return nil, errors.New("config file akslab.yaml: not found")
	}

	err := Deploy(context.Background(), DeployOptions{ConfigFile: "akslab.yaml"})
	assert.ErrorContains(t, err, "akslab.yaml")
}

func TestDeploy_MissingTemplateFile(t *testing.T) {
	env := setupDeploy(t, testfx.NewAzureFixture().SuccessfulDeployment())

	err := Deploy(context.Background(), DeployOptions{
		NonInteractive: true,
		TemplateFile:   filepath.Join(t.TempDir(), "main.json"),
	})

	assert.ErrorIs(t, err, failure.ErrMissingFile)
	assert.False(t, env.mock.Called("EnsureResourceGroup"))
}

func setupDestroy(t *testing.T, params config.Params) (*azure.MockClient, labstate.Store) {
	t.Helper()
	saveAndRestoreFactories(t)
	store := labstate.Store{Dir: t.TempDir()}
	require.NoError(t, store.Save(labstate.FromParams(params, time.Now()), time.Now()))

	mock := testfx.NewAzureFixture().Mock()
	loadSettings = func(config.SettingsOptions) (*config.Settings, error) {
		return &config.Settings{StateDir: store.Dir}, nil
	}
	newCredential = func() (azcore.TokenCredential, error) { return nil, nil }
	newAzureClient = func(string, azcore.TokenCredential, *config.Timeouts) (azure.Client, error) { return mock, nil }
	newObserver = func(bool) provisioning.Observer { return provisioning.NewMockObserver() }
	isInteractive = func() bool { return false }
	isInteractiveInput = func() bool { return false }
	return mock, store
}

func TestDestroy(t *testing.T) {
	mock, store := setupDestroy(t, testfx.FullParams())

	err := Destroy(context.Background(), DestroyOptions{Suffix: testfx.Suffix, Yes: true, PurgeVault: true})
	require.NoError(t, err)

	assert.True(t, mock.Called("DeleteResourceGroup"))
	assert.True(t, mock.Called("DeletePolicySetDefinition"))
	assert.True(t, mock.Called("DeleteSubscriptionDiagnosticSetting"))
	assert.True(t, mock.Called("PurgeDeletedVault"))
	_, err = store.Load(testfx.Suffix)
	assert.ErrorIs(t, err, labstate.ErrNotFound)
}

func TestDestroy_UnknownLab(t *testing.T) {
	setupDestroy(t, testfx.MinimalParams())

	err := Destroy(context.Background(), DestroyOptions{Suffix: "zzz999", Yes: true})
	assert.ErrorIs(t, err, labstate.ErrNotFound)
}

func TestDestroy_Confirmation(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		answer      bool
		wantErr     error
	}{
		{name: "non-interactive without --yes", interactive: false, wantErr: ErrNotConfirmed},
		{name: "declined", interactive: true, answer: false, wantErr: ErrNotConfirmed},
		{name: "confirmed", interactive: true, answer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, _ := setupDestroy(t, testfx.MinimalParams())
			isInteractiveInput = func() bool { return tt.interactive }
			newConfirmer = func() Confirmer { return stubConfirmer{answer: tt.answer} }

			err := Destroy(context.Background(), DestroyOptions{Suffix: testfx.Suffix})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mock.Calls)
				return
			}
			require.NoError(t, err)
			assert.True(t, mock.Called("DeleteResourceGroup"))
		})
	}
}

func TestDestroy_PartialCleanup(t *testing.T) {
	mock, store := setupDestroy(t, testfx.FullParams())
	mock.DeleteSubscriptionDiagnosticSettingFunc = func(context.Context, string) error {
		return errors.New("AuthorizationFailed")
	}

	err := Destroy(context.Background(), DestroyOptions{Suffix: testfx.Suffix, Yes: true})

	assert.ErrorContains(t, err, "only partly destroyed")
	_, err = store.Load(testfx.Suffix)
	assert.NoError(t, err, "record kept for a retry")
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		scope   string
		want    string
		wantErr string
	}{
		{name: "resource group json", format: FormatJSON, scope: ScopeResourceGroup, want: `"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#"`},
		{name: "subscription yaml", format: FormatYAML, scope: ScopeSubscription, want: "contentVersion: 1.0.0.0"},
		{name: "unknown scope", format: FormatJSON, scope: "tenant", wantErr: "unknown scope"},
		{name: "unknown format", format: "toml", scope: ScopeSubscription, wantErr: "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveAndRestoreFactories(t)
			var buf bytes.Buffer
			stdout = &buf

			err := Template(tt.format, tt.scope)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestList(t *testing.T) {
	saveAndRestoreFactories(t)
	store := labstate.Store{Dir: t.TempDir()}
	loadSettings = func(config.SettingsOptions) (*config.Settings, error) {
		return &config.Settings{StateDir: store.Dir}, nil
	}
	var buf bytes.Buffer
	stdout = &buf

	require.NoError(t, List("", ""))
	assert.Contains(t, buf.String(), "No labs recorded")

	buf.Reset()
	require.NoError(t, store.Save(labstate.FromParams(testfx.MinimalParams(), time.Now()), time.Now()))
	require.NoError(t, List("", ""))
	assert.Contains(t, buf.String(), "abc123")
	assert.Contains(t, buf.String(), "rg-akslab-abc123")
	assert.Contains(t, buf.String(), "deploying")
}

func TestDoctor(t *testing.T) {
	tests := []struct {
		name     string
		tools    *prerequisites.CheckResults
		credErr  error
		wantErr  bool
		wantText []string
	}{
		{
			name: "healthy",
			tools: &prerequisites.CheckResults{Results: []prerequisites.CheckResult{
				{Tool: prerequisites.Tool{Name: "az", Required: true}, Found: true, Version: "2.67.0"},
				{Tool: prerequisites.Tool{Name: "kubectl", InstallURL: "https://kubernetes.io"}},
			}},
			wantText: []string{"2.67.0", "not installed", "Lab Sub (sub-id) as dev@example.com"},
		},
		{
			name: "missing az",
			tools: &prerequisites.CheckResults{
				Results: []prerequisites.CheckResult{{Tool: prerequisites.Tool{Name: "az", Required: true}}},
				Missing: []prerequisites.Tool{{Name: "az", Required: true}},
			},
			wantErr:  true,
			wantText: []string{"missing"},
		},
		{
			name:     "credential fails",
			tools:    &prerequisites.CheckResults{},
			credErr:  errors.New("AADSTS700016"),
			wantErr:  true,
			wantText: []string{"AADSTS700016"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveAndRestoreFactories(t)
			var buf bytes.Buffer
			stdout = &buf
			checkAllPrereqs = func() *prerequisites.CheckResults { return tt.tools }
			newCredential = func() (azcore.TokenCredential, error) { return nil, nil }
			verifyCredential = func(context.Context, azcore.TokenCredential) error { return tt.credErr }
			newAzureCLI = func() *azcli.CLI {
				return &azcli.CLI{Runner: stubRunner{
					out: []byte(`{"id":"sub-id","name":"Lab Sub","user":{"name":"dev@example.com"}}`),
				}}
			}

			err := Doctor(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantText {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
