package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"portionbot/internal/config"
)

// RunScheduled re-invokes the pipeline on a standard 5-field cron
// expression (minute hour day-of-month month day-of-week), e.g.
// "0 3 * * *" for daily 3am runs. The ledger makes repeated runs cheap:
// each one only picks up items not yet classified. Blocks forever.
func RunScheduled(ctx context.Context, cfg config.Config) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.RunSchedule)
	if err != nil {
		return fmt.Errorf("invalid run_schedule '%s': %w", cfg.RunSchedule, err)
	}

	log.Printf("Scheduled runs enabled (cron: %s)", cfg.RunSchedule)
	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		if err := Run(ctx, cfg); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
