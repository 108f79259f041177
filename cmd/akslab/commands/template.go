package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/akslab/cmd/akslab/handlers"
)

// Template returns the template command.
func Template() *cobra.Command {
	var format, scope string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the generated ARM template",
		Long: `Print the ARM template deploy submits.

The resource-group template holds every lab module as a nested deployment,
wired in dependency order. The subscription template holds Defender pricing
and activity log routing.

Examples:
  akslab template > main.json
  akslab template --format yaml --scope subscription`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Template(format, scope)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", handlers.FormatJSON, "Output format: json or yaml")
	cmd.Flags().StringVar(&scope, "scope", handlers.ScopeResourceGroup, "Template scope: resource-group or subscription")

	return cmd
}
