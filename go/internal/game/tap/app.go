package tap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/metrics"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TapRepository defines what the app layer needs from the repository
type TapRepository interface {
	CommitTap(ctx context.Context, req SubmitTapRequest, admit AdmitFunc) (*models.TapResult, error)
}

// EventNotifier receives committed taps for fan-out
type EventNotifier interface {
	Notify(ctx context.Context, env events.Envelope) error
}

// Config tunes the ingestion path.
type Config struct {
	// StoreTimeout bounds the whole commit transaction.
	StoreTimeout time.Duration
	// NotifyTimeout bounds handing the event to the notifier after commit.
	NotifyTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		StoreTimeout:  3 * time.Second,
		NotifyTimeout: time.Second,
	}
}

// App handles tap ingestion
type App struct {
	repo     TapRepository
	notifier EventNotifier
	clock    clockwork.Clock
	metrics  metrics.Collector
	tracer   trace.Tracer
	cfg      Config
}

// NewApp creates a new tap App
func NewApp(repo TapRepository, notifier EventNotifier, clock clockwork.Clock, m metrics.Collector, cfg Config) *App {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &App{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		tracer:   otel.Tracer("github.com/mcdev12/gooseclicker/go/internal/game/tap"),
		cfg:      cfg,
	}
}

// SubmitTap commits one tap and returns the user's running totals for the
// round. The commit is not abandoned when the caller goes away; it is only
// bounded by the store timeout.
func (a *App) SubmitTap(ctx context.Context, req SubmitTapRequest) (*models.TapResult, error) {
	if err := a.validateSubmitTapRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ctx, span := a.tracer.Start(ctx, "tap.SubmitTap", trace.WithAttributes(
		attribute.String("round.id", req.RoundID.String()),
		attribute.String("user.id", req.UserID.String()),
		attribute.String("tap.id", req.TapID),
	))
	defer span.End()

	start := a.clock.Now()
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.StoreTimeout)
	defer cancel()

	result, err := a.repo.CommitTap(commitCtx, req, a.admit)
	a.metrics.RecordTap(tapOutcome(err), a.clock.Since(start))
	if err != nil {
		if tapOutcome(err) == metrics.TapError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "commit failed")
		}
		return nil, fmt.Errorf("failed to submit tap %q: %w", req.TapID, err)
	}

	span.SetAttributes(attribute.Int64("tap.seq", result.Taps), attribute.Int64("tap.score", result.Score))
	a.notify(ctx, req, result)

	return result, nil
}

// admit runs with the round row share-locked. The stored status is only a
// cache; the clock decides.
func (a *App) admit(round models.Round) error {
	if !game.AcceptsTaps(round, a.clock.Now()) {
		return game.ErrRoundNotActive
	}
	return nil
}

// notify hands the committed tap to the notifier. The tap is already durable,
// so failures here are logged and never surfaced.
func (a *App) notify(ctx context.Context, req SubmitTapRequest, result *models.TapResult) {
	env, err := events.NewTapCommitted(events.TapCommittedPayload{
		RoundID: req.RoundID,
		UserID:  req.UserID,
		TapID:   req.TapID,
		Taps:    result.Taps,
		Score:   result.Score,
		Points:  result.Points,
	}, a.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("tap_id", req.TapID).Msg("Failed to build tap event")
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.NotifyTimeout)
	defer cancel()

	if err := a.notifier.Notify(notifyCtx, env); err != nil {
		log.Warn().
			Err(err).
			Str("round_id", req.RoundID.String()).
			Str("tap_id", req.TapID).
			Msg("Failed to notify tap event")
	}
}

func (a *App) validateSubmitTapRequest(req SubmitTapRequest) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", game.ErrInvalidTap)
	}
	if req.RoundID == uuid.Nil {
		return fmt.Errorf("%w: round id is required", game.ErrInvalidRound)
	}
	if req.TapID == "" {
		return fmt.Errorf("%w: tap id is required", game.ErrInvalidTap)
	}
	if len(req.TapID) > MaxTapIDLength {
		return fmt.Errorf("%w: tap id longer than %d bytes", game.ErrInvalidTap, MaxTapIDLength)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", game.ErrInvalidTap, req.Role)
	}
	return nil
}

func tapOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.TapAccepted
	case errors.Is(err, game.ErrDuplicateTap):
		return metrics.TapDuplicate
	case errors.Is(err, game.ErrRoundNotFound):
		return metrics.TapNotFound
	case errors.Is(err, game.ErrRoundNotActive):
		return metrics.TapNotActive
	case errors.Is(err, game.ErrStoreUnavailable):
		return metrics.TapStoreBusy
	default:
		return metrics.TapError
	}
}
