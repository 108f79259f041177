package report

import (
	"fmt"
	"path/filepath"

	"github.com/imamik/akslab/internal/blueprint"
	"github.com/imamik/akslab/internal/config"
	"github.com/imamik/akslab/internal/provisioning"
	"github.com/imamik/akslab/internal/util/naming"
)

// NotAvailable stands in for a value no stage produced.
const NotAvailable = "not available"

// CompletedMessage ends every run that did not fail fatally.
const CompletedMessage = "Deployment completed successfully"

// Row is one resolved value in the summary.
type Row struct {
	Label  string
	Value  string
	Source config.Source
}

// Summary is everything the reporter prints.
type Summary struct {
	Suffix        string
	ResourceGroup string
	Rows          []Row
	Manifests     []provisioning.ManifestResult
	Warnings      []string

	// Values referenced by the next-step commands.
	Cluster       string
	Registry      string
	Kubeconfig    string
	CredentialsOK bool
	FollowUp      string
}

// Degraded reports whether any stage completed only partially.
func (s Summary) Degraded() bool {
	return len(s.Warnings) > 0
}

// Value returns the value of the row labelled label.
func (s Summary) Value(label string) string {
	for _, r := range s.Rows {
		if r.Label == label {
			return r.Value
		}
	}
	return ""
}

// Row labels.
const (
	LabelResourceGroup = "Resource group"
	LabelCluster       = "AKS cluster"
	LabelFQDN          = "API server FQDN"
	LabelOIDCIssuer    = "OIDC issuer"
	LabelWorkspace     = "Log Analytics workspace"
	LabelRegistry      = "Container registry"
	LabelKeyVault      = "Key vault"
	LabelKeyVaultURI   = "Key vault URI"
	LabelInitiative    = "Policy initiative"
	LabelDefender      = "Defender plans"
	LabelActivityLog   = "Activity log routing"
	LabelKubeconfig    = "Kubeconfig"
)

// Build resolves every reported value from the pipeline state. Missing
// resource-group outputs fall back to computed names; values owned by a
// subscription deployment that did not succeed are NotAvailable.
func Build(params config.Params, state *provisioning.State) Summary {
	prefix := params.NamePrefix()
	out := state.Outputs

	output := func(label, key, def string) Row {
		r := config.ValueOr(out, key, def)
		return Row{Label: label, Value: r.Value, Source: r.Source}
	}

	cluster := output(LabelCluster, blueprint.OutputClusterName, params.ClusterName())
	registry := output(LabelRegistry, blueprint.OutputRegistry, naming.Registry(prefix)+".azurecr.io")
	vault := output(LabelKeyVault, blueprint.OutputKeyVaultName, naming.KeyVault(prefix))

	initiative := Row{Label: LabelInitiative, Value: "disabled", Source: config.SourceDefault}
	if params.EnableAzurePolicy {
		initiative = output(LabelInitiative, blueprint.OutputInitiativeID, naming.PolicyInitiative(prefix))
	}

	configure := state.Configure
	kubeconfig := Row{Label: LabelKubeconfig, Value: NotAvailable, Source: config.SourceDefault}
	if configure.CredentialsOK() {
		kubeconfig = Row{Label: LabelKubeconfig, Value: configure.Kubeconfig, Source: config.SourceDetected}
	}

	return Summary{
		Suffix:        params.Suffix,
		ResourceGroup: params.ResourceGroup(),
		Rows: []Row{
			{Label: LabelResourceGroup, Value: params.ResourceGroup(), Source: config.SourceDefault},
			cluster,
			output(LabelFQDN, blueprint.OutputClusterFqdn, NotAvailable),
			output(LabelOIDCIssuer, blueprint.OutputOIDCIssuer, NotAvailable),
			output(LabelWorkspace, blueprint.OutputWorkspaceName, naming.Workspace(prefix)),
			registry,
			vault,
			output(LabelKeyVaultURI, blueprint.OutputKeyVaultURI, "https://"+vault.Value+".vault.azure.net/"),
			initiative,
			subscriptionRow(LabelDefender, state.Subscription, params.EnableDefender,
				blueprint.DefenderPlanContainers+", "+blueprint.DefenderPlanKeyVaults),
			subscriptionRow(LabelActivityLog, state.Subscription, params.RouteActivityLog,
				blueprint.ActivityLogSettingName(params)),
			kubeconfig,
		},
		Manifests:     configure.Manifests,
		Warnings:      state.Warnings,
		Cluster:       cluster.Value,
		Registry:      registry.Value,
		Kubeconfig:    configure.Kubeconfig,
		CredentialsOK: configure.CredentialsOK(),
		FollowUp:      configure.FollowUp,
	}
}

// subscriptionRow resolves a value the subscription deployment owns.
func subscriptionRow(label string, outcome provisioning.SubscriptionOutcome, requested bool, value string) Row {
	r, _ := config.Resolve(
		config.Func(config.SourceOutput, func() (string, bool, error) {
			if !outcome.OK() {
				return "", false, nil
			}
			if !requested {
				return "disabled", true, nil
			}
			return value, true, nil
		}),
		config.Default(NotAvailable),
	)
	return Row{Label: label, Value: r.Value, Source: r.Source}
}

// manifestName is the short form used in the manifest table.
func manifestName(path string) string {
	return filepath.Base(path)
}

func manifestDetail(m provisioning.ManifestResult) string {
	switch m.Status {
	case provisioning.ManifestApplied:
		return fmt.Sprintf("%d objects", m.Objects)
	case provisioning.ManifestMissing:
		return "file not found"
	default:
		if m.Err != nil {
			return firstLine(m.Err.Error())
		}
		return ""
	}
}
