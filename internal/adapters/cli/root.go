package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand builds the sakhatrip command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sakhatrip",
		Short: "SakhaTrip backend - intercity trip planning for Yakutia",
		Long: `SakhaTrip backend builds a routable transport graph from ingested
datasets and answers intercity trip queries against it.

Examples:
  sakhatrip serve
  sakhatrip pipeline
  sakhatrip pipeline --worker graph-builder
  sakhatrip plan --from Якутск --to Москва --date 2025-02-03 --passengers 2`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search standard locations)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewPipelineCommand())
	rootCmd.AddCommand(NewPlanCommand())

	return rootCmd
}
