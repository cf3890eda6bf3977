package round

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

// RoundRepository defines what the app layer needs from the repository
type RoundRepository interface {
	CreateRound(ctx context.Context, round models.Round) (*models.Round, error)
	GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error)
	ListRounds(ctx context.Context, status *models.RoundStatus, limit int) ([]models.Round, error)
	ActivateDueRounds(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	ListRoundsDueForFinalization(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	FinalizeRound(ctx context.Context, id uuid.UUID, now time.Time) (*FinalizeResult, error)
	PlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*models.Round, *models.PlayerStats, error)
	Leaderboard(ctx context.Context, roundID uuid.UUID) (*models.Round, []models.PlayerStats, error)
}

// EventNotifier receives lifecycle events for fan-out
type EventNotifier interface {
	Notify(ctx context.Context, env events.Envelope) error
}

// Waker is poked when a new round may need a status transition sooner than
// the next scheduled tick.
type Waker interface {
	Wake()
}

// Config holds the round timing knobs.
type Config struct {
	RoundDuration    time.Duration
	CooldownDuration time.Duration
	StoreTimeout     time.Duration
	NotifyTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:    60 * time.Second,
		CooldownDuration: 30 * time.Second,
		StoreTimeout:     3 * time.Second,
		NotifyTimeout:    time.Second,
	}
}

// App owns the round lifecycle: creation, status transitions and
// finalization.
type App struct {
	repo     RoundRepository
	notifier EventNotifier
	clock    clockwork.Clock
	metrics  metrics.Collector
	tracer   trace.Tracer
	cfg      Config
	waker    Waker
}

// NewApp creates a new round App
func NewApp(repo RoundRepository, notifier EventNotifier, clock clockwork.Clock, m metrics.Collector, cfg Config) *App {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &App{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		tracer:   otel.Tracer("github.com/mcdev12/gooseclicker/go/internal/game/round"),
		cfg:      cfg,
	}
}

// SetWaker registers the poller. The poller itself depends on the App, so
// it is attached after construction.
func (a *App) SetWaker(w Waker) {
	a.waker = w
}

// CreateRound schedules a round starting at req.StartTime, or after the
// configured cooldown when no start is given.
func (a *App) CreateRound(ctx context.Context, req CreateRoundRequest) (*models.Round, error) {
	now := a.clock.Now()

	start := now.Add(a.cfg.CooldownDuration)
	if req.StartTime != nil {
		if req.StartTime.IsZero() {
			return nil, fmt.Errorf("%w: start time is zero", game.ErrInvalidRound)
		}
		start = *req.StartTime
	}
	start = start.UTC()

	round := models.Round{
		ID:          uuid.New(),
		StartTime:   start,
		EndTime:     start.Add(a.cfg.RoundDuration),
		CooldownEnd: start,
		Status:      game.StatusAt(now, start),
	}

	storeCtx, cancel := a.storeContext(ctx)
	defer cancel()

	created, err := a.repo.CreateRound(storeCtx, round)
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	log.Info().
		Str("round_id", created.ID.String()).
		Time("start_time", created.StartTime).
		Time("end_time", created.EndTime).
		Str("status", string(created.Status)).
		Msg("Created round")

	if a.waker != nil {
		a.waker.Wake()
	}

	env, err := events.NewRoundCreated(*created, now)
	if err != nil {
		log.Error().Err(err).Str("round_id", created.ID.String()).Msg("Failed to build round event")
	} else {
		a.notify(ctx, env)
	}

	return created, nil
}

// GetRound returns the round with its leaderboard and the server clock.
func (a *App) GetRound(ctx context.Context, id uuid.UUID) (*models.RoundDetails, error) {
	if id == uuid.Nil {
		return nil, game.ErrRoundNotFound
	}

	round, players, err := a.repo.Leaderboard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get round %s: %w", id, err)
	}

	return &models.RoundDetails{
		Round:       *round,
		PlayerStats: players,
		ServerTime:  a.clock.Now().UTC(),
	}, nil
}

// ListRounds returns rounds newest first, optionally filtered by status.
func (a *App) ListRounds(ctx context.Context, req ListRoundsRequest) ([]models.Round, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", game.ErrInvalidRound, *req.Status)
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	rounds, err := a.repo.ListRounds(ctx, req.Status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// AdvanceStatuses activates due rounds and finalizes expired ones. Rounds
// another instance finalized first are skipped. It keeps going past
// individual failures and returns them joined.
func (a *App) AdvanceStatuses(ctx context.Context) (*AdvanceResult, error) {
	now := a.clock.Now()
	result := &AdvanceResult{}
	var errs []error

	activated, err := a.repo.ActivateDueRounds(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	result.Activated = activated
	for _, id := range activated {
		log.Info().Str("round_id", id.String()).Msg("Round activated")
	}

	due, err := a.repo.ListRoundsDueForFinalization(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}

	for _, id := range due {
		_, err := a.FinalizeRound(ctx, id)
		switch {
		case err == nil:
			result.Finalized = append(result.Finalized, id)
		case errors.Is(err, game.ErrFinalizationConflict), errors.Is(err, game.ErrRoundNotActive):
			result.Skipped++
			log.Debug().Err(err).Str("round_id", id.String()).Msg("Skipped round finalization")
		default:
			errs = append(errs, err)
		}
	}

	return result, errors.Join(errs...)
}

// FinalizeRound replays the round's ledger into player aggregates and marks
// it FINISHED. A second call returns ErrFinalizationConflict and changes
// nothing.
func (a *App) FinalizeRound(ctx context.Context, id uuid.UUID) (*FinalizeResult, error) {
	ctx, span := a.tracer.Start(ctx, "round.FinalizeRound", trace.WithAttributes(
		attribute.String("round.id", id.String()),
	))
	defer span.End()

	start := a.clock.Now()
	storeCtx, cancel := a.storeContext(ctx)
	defer cancel()

	result, err := a.repo.FinalizeRound(storeCtx, id, start)
	a.metrics.RecordFinalization(finalizeOutcome(err), a.clock.Since(start), takenTaps(result))
	if err != nil {
		if finalizeOutcome(err) == metrics.FinalizeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "finalization failed")
		}
		return nil, fmt.Errorf("failed to finalize round %s: %w", id, err)
	}

	if result.Drifted > 0 {
		a.metrics.RecordReplayDrift(result.Drifted)
		log.Warn().
			Str("round_id", id.String()).
			Int("drifted_taps", result.Drifted).
			Msg("Live points disagreed with ledger replay")
	}

	span.SetAttributes(
		attribute.Int64("round.total_score", result.Round.TotalScore),
		attribute.Int("round.players", len(result.Players)),
	)
	log.Info().
		Str("round_id", id.String()).
		Int64("total_score", result.Round.TotalScore).
		Int64("total_taps", result.TotalTaps).
		Int("players", len(result.Players)).
		Int64("ledger_rows_deleted", result.LedgerRowsDeleted).
		Msg("Round finalized")

	env, err := events.NewRoundFinished(events.RoundFinishedPayload{
		RoundID:      id,
		TotalScore:   result.Round.TotalScore,
		TotalPlayers: len(result.Players),
		TotalTaps:    result.TotalTaps,
		FinalizedAt:  start,
	})
	if err != nil {
		log.Error().Err(err).Str("round_id", id.String()).Msg("Failed to build round event")
	} else {
		a.notify(ctx, env)
	}

	return result, nil
}

// GetPlayerStats returns the user's stats for a round. Once the round is
// FINISHED these are the stored aggregates; before that they are summed
// live from the ledger. A nil result means the user has not tapped.
func (a *App) GetPlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*models.PlayerStats, error) {
	if roundID == uuid.Nil {
		return nil, game.ErrRoundNotFound
	}

	_, stats, err := a.repo.PlayerStats(ctx, userID, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	return stats, nil
}

// GetAllPlayerStats returns the round's leaderboard, score descending.
func (a *App) GetAllPlayerStats(ctx context.Context, roundID uuid.UUID) (*models.RoundLeaderboard, error) {
	if roundID == uuid.Nil {
		return nil, game.ErrRoundNotFound
	}

	round, players, err := a.repo.Leaderboard(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	board := &models.RoundLeaderboard{
		RoundID:      round.ID,
		Status:       round.Status,
		TotalPlayers: len(players),
		Players:      players,
	}
	for _, p := range players {
		board.TotalTaps += p.Taps
	}
	return board, nil
}

func (a *App) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), a.cfg.StoreTimeout)
}

func (a *App) notify(ctx context.Context, env events.Envelope) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.NotifyTimeout)
	defer cancel()

	if err := a.notifier.Notify(notifyCtx, env); err != nil {
		log.Warn().
			Err(err).
			Str("round_id", env.RoundID.String()).
			Str("event_type", string(env.EventType)).
			Msg("Failed to notify round event")
	}
}

func finalizeOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.FinalizeDone
	case errors.Is(err, game.ErrFinalizationConflict):
		return metrics.FinalizeConflict
	default:
		return metrics.FinalizeError
	}
}

func takenTaps(r *FinalizeResult) int64 {
	if r == nil {
		return 0
	}
	return r.TotalTaps
}
