package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"portionbot/internal/config"
	"portionbot/internal/storage/sqlite"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show classification history totals and recent decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		var err error
		if configPath != "" {
			cfg, err = config.LoadPath(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		db, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening history database %s: %w", cfg.DBPath, err)
		}
		defer db.Close()

		totals, err := sqlite.DecisionTotals(db)
		if err != nil {
			return err
		}
		fmt.Printf("classified=%d accepts_half=%d rejects_half=%d\n",
			totals.Classified, totals.True, totals.False)

		if statsLimit > 0 {
			rows, err := sqlite.RecentClassifications(db, statsLimit)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Printf("%s  id=%d decision=%-5t model=%s  %s (%s)\n",
					r.ClassifiedAt.Format("2006-01-02 15:04"), r.ItemID, r.Decision, r.Model, r.Name, r.Unit)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 20, "Number of recent classifications to list (0 for none)")
}
