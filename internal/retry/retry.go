package retry

import (
	"context"
	"log"
	"math"
	"time"
)

// Config defines retry behavior for a fallible operation.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultConfig matches the pipeline defaults: delays of 1s then 2s
// before the final attempt.
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	Factor:      2.0,
}

// Do runs op up to cfg.MaxAttempts times, sleeping
// BaseDelay * Factor^(k-1) after failed attempt k. It returns the first
// successful result immediately. When every attempt fails (or the context
// is canceled mid-backoff) it returns the zero value and false; the caller
// decides what giving up means. Do knows nothing about what op does.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, bool) {
	var zero T

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, true
		}

		if attempt == cfg.MaxAttempts {
			log.Printf("retry: giving up after %d attempts, last err=%v", cfg.MaxAttempts, err)
			break
		}

		delay := backoffDelay(attempt, cfg)
		log.Printf("retry: attempt %d/%d failed err=%v, next in %s", attempt, cfg.MaxAttempts, err, delay)
		select {
		case <-ctx.Done():
			log.Printf("retry: canceled during backoff: %v", ctx.Err())
			return zero, false
		case <-time.After(delay):
		}
	}
	return zero, false
}

func backoffDelay(attempt int, cfg Config) time.Duration {
	return time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Factor, float64(attempt-1)))
}
