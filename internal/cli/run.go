package cli

import (
	"context"

	"github.com/spf13/cobra"

	"portionbot/internal/app"
	"portionbot/internal/config"
)

var (
	inputOverride         string
	ledgerOverride        string
	outputDirOverride     string
	maxItemsOverride      int
	maxConcurrentOverride int
	modelOverride         string
	temperatureOverride   float64
	maxTokensOverride     int64
	scheduleOverride      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the classification pipeline once (or on a cron schedule)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		if cfg.RunSchedule != "" {
			return app.RunScheduled(ctx, cfg)
		}
		return app.Run(ctx, cfg)
	},
}

func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	// Flags override config file and env vars, but only when set.
	if cmd.Flags().Changed("input") {
		cfg.InputPath = inputOverride
	}
	if cmd.Flags().Changed("ledger") {
		cfg.LedgerPath = ledgerOverride
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = outputDirOverride
	}
	if cmd.Flags().Changed("max-items") {
		cfg.MaxItems = maxItemsOverride
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent = maxConcurrentOverride
	}
	if cmd.Flags().Changed("model") {
		cfg.ClaudeModel = modelOverride
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Temperature = temperatureOverride
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.MaxTokens = maxTokensOverride
	}
	if cmd.Flags().Changed("schedule") {
		cfg.RunSchedule = scheduleOverride
	}

	return cfg, cfg.Validate()
}

func init() {
	runCmd.Flags().StringVar(&inputOverride, "input", "", "JSON array of food items to classify")
	runCmd.Flags().StringVar(&ledgerOverride, "ledger", "", "Append-only file of already-classified item ids")
	runCmd.Flags().StringVar(&outputDirOverride, "output-dir", "", "Directory for sequence-numbered report artifacts")
	runCmd.Flags().IntVar(&maxItemsOverride, "max-items", 0, "Maximum items to classify per run")
	runCmd.Flags().IntVar(&maxConcurrentOverride, "max-concurrent", 0, "Maximum classification calls in flight")
	runCmd.Flags().StringVar(&modelOverride, "model", "", "Claude model to use")
	runCmd.Flags().Float64Var(&temperatureOverride, "temperature", 0, "Sampling temperature (0.0 for consistency)")
	runCmd.Flags().Int64Var(&maxTokensOverride, "max-tokens", 0, "Maximum response tokens")
	runCmd.Flags().StringVar(&scheduleOverride, "schedule", "", "Cron expression for repeated runs (e.g. '0 3 * * *')")
}
