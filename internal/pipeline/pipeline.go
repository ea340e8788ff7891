package pipeline

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"portionbot/internal/domain"
	"portionbot/internal/ledger"
	"portionbot/internal/retry"
)

// Classifier is the external capability that maps an item's name and unit
// to a boolean decision.
type Classifier interface {
	Classify(ctx context.Context, name, unit string) (bool, error)
}

// History receives every successful classification for durable
// bookkeeping beyond the report artifact. Implementations must be safe
// for concurrent use. History failures never affect the run.
type History interface {
	Insert(rec domain.ProcessedRecord) error
}

// Config bounds one run of the pipeline.
type Config struct {
	MaxConcurrent int
	MaxItems      int
	Retry         retry.Config
	// Pacing is an optional fixed delay imposed per item while its
	// permit is held, to respect backend throughput ceilings.
	Pacing time.Duration
}

// Pipeline fans eligible items out to the classifier under a concurrency
// bound, retries each item independently, records successes in the ledger
// and aggregates them into a run report.
type Pipeline struct {
	cfg        Config
	classifier Classifier
	ledger     *ledger.Ledger
	history    History
}

func New(cfg Config, classifier Classifier, led *ledger.Ledger, history History) *Pipeline {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Pipeline{cfg: cfg, classifier: classifier, ledger: led, history: history}
}

// Run classifies every eligible item and returns the aggregated report.
// The eligibility set is fixed at run start: ids already present in the
// ledger are never submitted, and ledger entries written during the run do
// not retroactively exclude items already scheduled. A ledger that cannot
// be read is run-fatal; per-item failures are logged and dropped so the
// items are retried on the next run.
func (p *Pipeline) Run(ctx context.Context, items []domain.Item) (*domain.RunReport, error) {
	processed, err := p.ledger.Load()
	if err != nil {
		return nil, err
	}

	var eligible []domain.Item
	for _, item := range items {
		if _, seen := processed[strconv.FormatInt(item.ID, 10)]; seen {
			continue
		}
		eligible = append(eligible, item)
	}
	if p.cfg.MaxItems > 0 && len(eligible) > p.cfg.MaxItems {
		eligible = eligible[:p.cfg.MaxItems]
	}

	log.Printf("pipeline: items=%d already_processed=%d eligible=%d max_concurrent=%d",
		len(items), len(items)-len(eligible), len(eligible), p.cfg.MaxConcurrent)

	report := &domain.RunReport{Records: []domain.ProcessedRecord{}}
	if len(eligible) == 0 {
		return report, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		permits = make(chan struct{}, p.cfg.MaxConcurrent)
	)

	for _, item := range eligible {
		wg.Add(1)
		go func(item domain.Item) {
			defer wg.Done()

			permits <- struct{}{}
			defer func() { <-permits }()

			if p.cfg.Pacing > 0 {
				time.Sleep(p.cfg.Pacing)
			}

			decision, ok := retry.Do(ctx, p.cfg.Retry, func(ctx context.Context) (bool, error) {
				return p.classifier.Classify(ctx, item.Name, item.Unit)
			})
			if !ok {
				log.Printf("pipeline: item=%d dropped after exhausted retries, will be retried next run", item.ID)
				return
			}

			rec := domain.ProcessedRecord{ID: item.ID, Name: item.Name, Unit: item.Unit, Decision: decision}

			// A failed append leaves the id unrecorded rather than risking a
			// corrupt ledger; the item is simply reprocessed next run.
			if err := p.ledger.Record(strconv.FormatInt(item.ID, 10)); err != nil {
				log.Printf("pipeline: item=%d ledger append failed, success not durable: %v", item.ID, err)
			}
			if p.history != nil {
				if err := p.history.Insert(rec); err != nil {
					log.Printf("pipeline: item=%d history insert failed: %v", item.ID, err)
				}
			}

			log.Printf("pipeline: item=%d decision=%t", item.ID, decision)
			mu.Lock()
			report.Records = append(report.Records, rec)
			mu.Unlock()
		}(item)
	}
	wg.Wait()

	failed := len(eligible) - len(report.Records)
	log.Printf("pipeline: run summary eligible=%d succeeded=%d failed=%d", len(eligible), len(report.Records), failed)

	for _, rec := range report.Records {
		if rec.Decision {
			report.TotalTrue++
		} else {
			report.TotalFalse++
		}
	}
	report.TotalAnalyzed = len(report.Records)
	return report, nil
}
