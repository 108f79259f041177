package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/akslab/cmd/akslab/handlers"
)

// Doctor returns the command that checks the local environment.
func Doctor() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check client tools and Azure sign-in",
		Long: `Doctor checks everything deploy needs on this machine:
  - az (required), kubelogin and kubectl (optional)
  - an Azure credential that can reach Resource Manager
  - the signed-in Azure CLI account`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context())
		},
	}
}
