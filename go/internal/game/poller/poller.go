package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gooseclicker/go/internal/game/round"
	"github.com/mcdev12/gooseclicker/go/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Advancer is the slice of the round App the poller drives
type Advancer interface {
	AdvanceStatuses(ctx context.Context) (*round.AdvanceResult, error)
}

type Config struct {
	Interval time.Duration
	// TickTimeout bounds one pass. A pass is not abandoned on shutdown, so
	// an in-flight finalization either commits or rolls back.
	TickTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		TickTimeout: 10 * time.Second,
	}
}

// Poller periodically advances round statuses. Every instance may run one;
// finalization is idempotent, so concurrent pollers only race to a conflict.
type Poller struct {
	advancer Advancer
	clock    clockwork.Clock
	metrics  metrics.Collector
	config   Config
	logger   zerolog.Logger

	wake chan struct{}

	mu      sync.Mutex
	running bool
}

func NewPoller(advancer Advancer, clock clockwork.Clock, m metrics.Collector, cfg Config, instanceID string) *Poller {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &Poller{
		advancer: advancer,
		clock:    clock,
		metrics:  m,
		config:   cfg,
		logger:   log.With().Str("component", "poller").Str("instance_id", instanceID).Logger(),
		wake:     make(chan struct{}, 1),
	}
}

// Wake requests an extra pass without waiting for the next tick. Wakes that
// arrive while one is already pending are coalesced.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. Passes run on this goroutine only, so they
// never overlap.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	ticker := p.clock.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.config.Interval).Msg("Round poller started")

	// Process immediately on start
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Round poller stopped")
			return nil
		case <-ticker.Chan():
			p.tick(ctx)
		case <-p.wake:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.TickTimeout)
	defer cancel()

	start := p.clock.Now()
	result, err := p.advancer.AdvanceStatuses(tickCtx)
	p.metrics.RecordPollerTick(err == nil, p.clock.Since(start))

	if err != nil {
		// Transient store errors are retried by the next tick.
		p.logger.Error().Err(err).Msg("Failed to advance round statuses")
	}
	if result == nil {
		return
	}
	if len(result.Activated) > 0 || len(result.Finalized) > 0 || result.Skipped > 0 {
		p.logger.Debug().
			Int("activated", len(result.Activated)).
			Int("finalized", len(result.Finalized)).
			Int("skipped", result.Skipped).
			Msg("Advanced round statuses")
	}
}
