package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/akslab/cmd/akslab/handlers"
)

// Deploy returns the deploy command.
//
// Every parameter can come from a flag, akslab.yaml, an AKSLAB_* variable
// or an interactive prompt, in that order. Flags that are set are never
// prompted for.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions
	var enableDefender bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a new AKS lab",
		Long: `Deploy creates a new, uniquely named AKS lab.

The run goes through these stages:
  validate    check the parameter set and look for a name collision
  record      write the local lab record used by destroy
  deploy-rg   create the resource group and deploy the main template
  deploy-sub  apply Defender pricing and activity log routing (best effort)
  configure   fetch cluster credentials and apply the lab manifests
  report      print resource names and next steps

Only a failed resource group deployment stops the run. Every other problem
is reported and the run completes in a degraded state.

Examples:
  # Prompt for anything not configured
  akslab deploy

  # Fully scripted
  akslab deploy --non-interactive --subscription-id <id> --location westeurope \
    --admin-group-id <object-id> --authorized-ip 203.0.113.10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("enable-defender") {
				opts.Params.EnableDefender = &enableDefender
			}
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Params.SubscriptionID, "subscription-id", "", "Azure subscription to deploy to")
	f.StringVarP(&opts.Params.Location, "location", "l", "", "Azure region, e.g. westeurope")
	f.StringVar(&opts.Params.AdminGroupObjectID, "admin-group-id", "", "Object ID of the Entra ID group granted cluster-admin")
	f.StringVar(&opts.Params.AuthorizedIP, "authorized-ip", "", "IPv4 address or CIDR allowed to reach the API server (default: detected public IP)")
	f.BoolVar(&enableDefender, "enable-defender", false, "Enable Defender for Containers and Key Vault")
	f.StringVar(&opts.Params.ManifestsDir, "manifests-dir", "", "Directory holding the post-deploy manifests (default: manifests)")
	f.StringVar(&opts.Params.SSHPublicKeyFile, "ssh-public-key", "", "RSA public key for the node pools (default: generated per lab)")
	f.StringArrayVar(&opts.Params.Tags, "tag", nil, "Extra resource tag as key=value (repeatable)")
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "Path to akslab.yaml (default: ./akslab.yaml when present)")
	f.StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file (default: ./.env when present)")
	f.BoolVar(&opts.NonInteractive, "non-interactive", false, "Never prompt; fail on missing parameters")
	f.StringVar(&opts.TemplateFile, "template-file", "", "Deploy this JSON or YAML template instead of the generated one")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "Write stage metrics in Prometheus text format to this file")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show debug output")

	return cmd
}
