package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/akslab/cmd/akslab/handlers"
)

// List returns the list command.
func List() *cobra.Command {
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labs recorded on this machine",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.List(configFile, envFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to akslab.yaml")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to a .env file")

	return cmd
}
