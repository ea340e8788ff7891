package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "portionbot",
	Short: "Classifies food items on whether a half portion makes sense",
	Long: `portionbot calls the Anthropic API once per food item to decide whether
offering a half portion of it is culturally acceptable. Runs are resumable:
classified item ids are kept in an append-only ledger and skipped on later
runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for local development.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: ./config.yaml or CONFIG_PATH)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
}

// Execute runs the CLI. The caller turns a returned error into a nonzero
// exit status.
func Execute() error {
	return rootCmd.Execute()
}
