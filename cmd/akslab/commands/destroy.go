package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/akslab/cmd/akslab/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy a lab and its subscription-scoped settings",
		Long: `Destroy removes a lab created by akslab deploy.

It deletes the lab resource group, then the objects that outlive it:
  - the policy initiative and policy definitions
  - the activity log diagnostic setting
  - the soft-deleted key vault (with --purge-vault)

Defender pricing is left unchanged; the command prints how to reset it.

Example:
  akslab destroy --lab x7k2p9

WARNING: This operation is irreversible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Suffix, "lab", "", "Lab identifier (the 6 character suffix)")
	f.BoolVar(&opts.PurgeVault, "purge-vault", false, "Purge the soft-deleted key vault")
	f.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	f.StringVarP(&opts.ConfigFile, "config", "c", "", "Path to akslab.yaml")
	f.StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show debug output")
	_ = cmd.MarkFlagRequired("lab")

	return cmd
}
