package round

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/mcdev12/gooseclicker/go/internal/game/db"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/mcdev12/gooseclicker/go/internal/sqlutil"
)

// snapshot reads see one consistent view of a round and its stats, so a
// finalization committing mid-read cannot make taps vanish.
var snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Repository implements round data access operations
type Repository struct {
	queries      *db.Queries
	db           *sql.DB
	retainLedger bool
}

// NewRepository creates a new round repository. With retainLedger set,
// finalization keeps the tap rows instead of reclaiming them.
func NewRepository(queries *db.Queries, database *sql.DB, retainLedger bool) *Repository {
	return &Repository{
		queries:      queries,
		db:           database,
		retainLedger: retainLedger,
	}
}

// CreateRound inserts a new round
func (r *Repository) CreateRound(ctx context.Context, round models.Round) (*models.Round, error) {
	created, err := r.queries.CreateRound(ctx, db.CreateRoundParams{
		ID:          round.ID,
		StartTime:   round.StartTime,
		EndTime:     round.EndTime,
		CooldownEnd: round.CooldownEnd,
		Status:      string(round.Status),
	})
	if err != nil {
		return nil, storeErr("failed to create round", err)
	}

	m := dbRoundToModel(created)
	return &m, nil
}

// GetRound retrieves a round by ID
func (r *Repository) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	dbRound, err := r.queries.GetRound(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrRoundNotFound
		}
		return nil, storeErr("failed to get round", err)
	}

	m := dbRoundToModel(dbRound)
	return &m, nil
}

// ListRounds returns rounds newest first
func (r *Repository) ListRounds(ctx context.Context, status *models.RoundStatus, limit int) ([]models.Round, error) {
	var s *string
	if status != nil {
		v := string(*status)
		s = &v
	}

	dbRounds, err := r.queries.ListRounds(ctx, db.ListRoundsParams{
		Status:   sqlutil.ToSqlString(s),
		RowLimit: int32(limit),
	})
	if err != nil {
		return nil, storeErr("failed to list rounds", err)
	}

	rounds := make([]models.Round, 0, len(dbRounds))
	for _, dr := range dbRounds {
		rounds = append(rounds, dbRoundToModel(dr))
	}
	return rounds, nil
}

// ActivateDueRounds flips every COOLDOWN round whose start has passed.
func (r *Repository) ActivateDueRounds(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := r.queries.ActivateDueRounds(ctx, now)
	if err != nil {
		return nil, storeErr("failed to activate rounds", err)
	}
	return ids, nil
}

// ListRoundsDueForFinalization returns ACTIVE rounds whose end has passed.
func (r *Repository) ListRoundsDueForFinalization(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := r.queries.ListRoundsDueForFinalization(ctx, now)
	if err != nil {
		return nil, storeErr("failed to list rounds due for finalization", err)
	}
	return ids, nil
}

// FinalizeRound collapses the round's ledger into player_stats in a single
// transaction holding the round row FOR UPDATE. Tap submissions share-lock
// the same row, so every tap either commits before the ledger is read or
// sees FINISHED afterwards.
func (r *Repository) FinalizeRound(ctx context.Context, id uuid.UUID, now time.Time) (*FinalizeResult, error) {
	var result *FinalizeResult

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		dbRound, err := q.GetRoundForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return game.ErrRoundNotFound
			}
			return fmt.Errorf("failed to lock round: %w", err)
		}

		switch {
		case dbRound.Status == string(models.RoundStatusFinished):
			return game.ErrFinalizationConflict
		case now.Before(dbRound.EndTime):
			return fmt.Errorf("%w: round ends at %s", game.ErrRoundNotActive, dbRound.EndTime.Format(time.RFC3339Nano))
		}

		rows, err := q.ListRoundLedger(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read ledger: %w", err)
		}

		entries := make([]game.LedgerEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, game.LedgerEntry{
				TapID:  row.ID,
				UserID: row.UserID,
				Role:   models.Role(row.Role),
				Points: row.Points,
			})
		}
		replay := game.Replay(id, entries)

		for _, p := range replay.Players {
			if err := q.UpsertPlayerStats(ctx, db.UpsertPlayerStatsParams{
				UserID:  p.UserID,
				RoundID: id,
				Taps:    p.Taps,
				Score:   p.Score,
			}); err != nil {
				return fmt.Errorf("failed to upsert player stats: %w", err)
			}
		}

		if err := q.FinishRound(ctx, db.FinishRoundParams{
			ID:          id,
			TotalScore:  replay.TotalScore,
			FinalizedAt: sqlutil.ToSqlTime(&now),
		}); err != nil {
			return fmt.Errorf("failed to finish round: %w", err)
		}

		var deleted int64
		if !r.retainLedger {
			if deleted, err = q.DeleteRoundTaps(ctx, id); err != nil {
				return fmt.Errorf("failed to delete ledger: %w", err)
			}
			if err := q.DeleteRoundCounters(ctx, id); err != nil {
				return fmt.Errorf("failed to delete tap counters: %w", err)
			}
		}

		finished := dbRoundToModel(dbRound)
		finished.Status = models.RoundStatusFinished
		finished.TotalScore = replay.TotalScore
		finished.FinalizedAt = &now

		result = &FinalizeResult{
			Round:             finished,
			Players:           replay.Players,
			TotalTaps:         replay.TotalTaps,
			Drifted:           replay.Drifted,
			LedgerRowsDeleted: deleted,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, game.ErrFinalizationConflict) || errors.Is(err, game.ErrRoundNotFound) || errors.Is(err, game.ErrRoundNotActive) {
			return nil, err
		}
		return nil, storeErr("failed to finalize round", err)
	}

	return result, nil
}

// PlayerStats returns the round and the user's stats in one snapshot: the
// stored aggregate once FINISHED, otherwise a live sum over the ledger.
// Stats are nil when the user has not tapped.
func (r *Repository) PlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*models.Round, *models.PlayerStats, error) {
	var (
		round models.Round
		stats *models.PlayerStats
	)

	err := sqlutil.RunWithOptions(ctx, r.db, snapshot, r.queries.WithTx, func(q *db.Queries) error {
		dbRound, err := q.GetRound(ctx, roundID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return game.ErrRoundNotFound
			}
			return fmt.Errorf("failed to get round: %w", err)
		}
		round = dbRoundToModel(dbRound)

		if round.Status == models.RoundStatusFinished {
			ps, err := q.GetPlayerStats(ctx, db.GetPlayerStatsParams{UserID: userID, RoundID: roundID})
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil
				}
				return fmt.Errorf("failed to get player stats: %w", err)
			}
			stats = &models.PlayerStats{UserID: ps.UserID, RoundID: ps.RoundID, Taps: ps.Taps, Score: ps.Score}
			return nil
		}

		live, err := q.GetLiveStats(ctx, db.GetLiveStatsParams{RoundID: roundID, UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to get live stats: %w", err)
		}
		if live.Taps > 0 {
			stats = &models.PlayerStats{UserID: userID, RoundID: roundID, Taps: live.Taps, Score: live.Score}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, game.ErrRoundNotFound) {
			return nil, nil, err
		}
		return nil, nil, storeErr("failed to read player stats", err)
	}

	return &round, stats, nil
}

// Leaderboard returns the round and every player's stats, score descending,
// from one snapshot.
func (r *Repository) Leaderboard(ctx context.Context, roundID uuid.UUID) (*models.Round, []models.PlayerStats, error) {
	var (
		round   models.Round
		players []models.PlayerStats
	)

	err := sqlutil.RunWithOptions(ctx, r.db, snapshot, r.queries.WithTx, func(q *db.Queries) error {
		dbRound, err := q.GetRound(ctx, roundID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return game.ErrRoundNotFound
			}
			return fmt.Errorf("failed to get round: %w", err)
		}
		round = dbRoundToModel(dbRound)

		if round.Status == models.RoundStatusFinished {
			rows, err := q.ListPlayerStats(ctx, roundID)
			if err != nil {
				return fmt.Errorf("failed to list player stats: %w", err)
			}
			players = make([]models.PlayerStats, 0, len(rows))
			for _, row := range rows {
				players = append(players, models.PlayerStats{
					UserID: row.UserID, RoundID: roundID, Username: row.Username, Taps: row.Taps, Score: row.Score,
				})
			}
			return nil
		}

		rows, err := q.ListLiveStats(ctx, roundID)
		if err != nil {
			return fmt.Errorf("failed to list live stats: %w", err)
		}
		players = make([]models.PlayerStats, 0, len(rows))
		for _, row := range rows {
			players = append(players, models.PlayerStats{
				UserID: row.UserID, RoundID: roundID, Username: row.Username, Taps: row.Taps, Score: row.Score,
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, game.ErrRoundNotFound) {
			return nil, nil, err
		}
		return nil, nil, storeErr("failed to read leaderboard", err)
	}

	return &round, players, nil
}

func storeErr(msg string, err error) error {
	if sqlutil.IsRetryable(err) {
		return fmt.Errorf("%s: %w: %w", msg, game.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func dbRoundToModel(r db.Round) models.Round {
	return models.Round{
		ID:          r.ID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		CooldownEnd: r.CooldownEnd,
		Status:      models.RoundStatus(r.Status),
		TotalScore:  r.TotalScore,
		CreatedAt:   r.CreatedAt,
		FinalizedAt: sqlutil.FromSqlTime(r.FinalizedAt),
	}
}
