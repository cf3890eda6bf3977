package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/metrics"
	"github.com/rs/zerolog/log"
)

type RetryConfig struct {
	MaxRetries int
	// RetryDelay grows linearly with the attempt number.
	RetryDelay time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Retrying retries a remote backend and records every attempt.
type Retrying struct {
	inner   Notifier
	clock   clockwork.Clock
	metrics metrics.Collector
	cfg     RetryConfig
}

func NewRetrying(inner Notifier, clock clockwork.Clock, m metrics.Collector, cfg RetryConfig) *Retrying {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &Retrying{
		inner:   inner,
		clock:   clock,
		metrics: m,
		cfg:     cfg,
	}
}

func (r *Retrying) Notify(ctx context.Context, env events.Envelope) error {
	var lastErr error
	eventType := string(env.EventType)

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				r.metrics.RecordEventDropped(eventType)
				return fmt.Errorf("publish abandoned after %d attempts: %w", attempt, ctx.Err())
			case <-r.clock.After(delay):
			}
		}

		err := r.inner.Notify(ctx, env)
		r.metrics.RecordPublishAttempt(eventType, attempt+1, err == nil)
		if err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", env.EventID).
				Msg("Failed to publish event, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", env.EventID).
				Msg("Publish succeeded after retry")
		}
		return nil
	}

	r.metrics.RecordEventDropped(eventType)
	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}
