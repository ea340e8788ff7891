package app

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/slack-go/slack"

	"portionbot/internal/config"
	"portionbot/internal/domain"
	"portionbot/internal/integrations/llm"
	"portionbot/internal/ledger"
	"portionbot/internal/notify"
	"portionbot/internal/pipeline"
	"portionbot/internal/report"
	"portionbot/internal/retry"
	"portionbot/internal/storage/sqlite"
)

//go:embed instructions.md
var embeddedInstructions string

// Run executes one classification run: load input, filter against the
// ledger, fan out to the backend, write the report. Returned errors are
// run-fatal; item-level failures are logged inside the pipeline.
func Run(ctx context.Context, cfg config.Config) error {
	items, err := loadItems(cfg.InputPath)
	if err != nil {
		return err
	}

	systemPrompt, err := loadInstructions(cfg.InstructionsPath)
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg.AnthropicAPIKey, systemPrompt, llm.Parameters{
		Model:       cfg.ClaudeModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, time.Duration(cfg.RequestTimeoutSeconds)*time.Second)

	// History is supplemental bookkeeping: a broken store must not stop
	// classification work.
	var history pipeline.History
	var db *sql.DB
	if cfg.DBPath != "" {
		db, err = sqlite.InitDB(cfg.DBPath)
		if err != nil {
			log.Printf("History database unavailable, continuing without it: %v", err)
		} else {
			defer db.Close()
			history = sqlite.NewStore(db, cfg.ClaudeModel)
		}
	}

	p := pipeline.New(pipeline.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxItems:      cfg.MaxItems,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			BaseDelay:   time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
			Factor:      cfg.RetryBackoffFactor,
		},
		Pacing: time.Duration(cfg.PacingMS) * time.Millisecond,
	}, client, ledger.New(cfg.LedgerPath), history)

	rep, err := p.Run(ctx, items)
	if err != nil {
		return err
	}

	outputPath := ""
	if rep.TotalAnalyzed == 0 {
		log.Printf("Run complete: nothing new was produced, no report written")
	} else {
		outputPath, err = report.Write(cfg.OutputDir, rep)
		if err != nil {
			return err
		}
		log.Printf("Run complete: analyzed=%d true=%d false=%d report=%s",
			rep.TotalAnalyzed, rep.TotalTrue, rep.TotalFalse, outputPath)
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannelID != "" {
		api := slack.New(cfg.SlackBotToken)
		if err := notify.PostRunSummary(api, cfg.SlackChannelID, rep, outputPath); err != nil {
			log.Printf("Slack notification failed: %v", err)
		}
	}
	return nil
}

func loadItems(path string) ([]domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("input %s is not a JSON array: %w", path, err)
	}

	items, verrs := domain.ValidateItems(raw)
	log.Printf("Loaded %d items from %s (%d rejected)", len(items), path, len(verrs))
	return items, nil
}

func loadInstructions(path string) (string, error) {
	if path == "" {
		return embeddedInstructions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading instructions %s: %w", path, err)
	}
	return string(data), nil
}
