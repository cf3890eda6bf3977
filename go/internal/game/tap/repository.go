package tap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/mcdev12/gooseclicker/go/internal/game/db"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/mcdev12/gooseclicker/go/internal/sqlutil"
)

// AdmitFunc decides, with the round row locked, whether the tap may be
// committed. A non-nil error aborts the transaction.
type AdmitFunc func(round models.Round) error

// Repository writes taps to the ledger
type Repository struct {
	queries *db.Queries
	db      *sql.DB
}

// NewRepository creates a new tap repository
func NewRepository(queries *db.Queries, database *sql.DB) *Repository {
	return &Repository{
		queries: queries,
		db:      database,
	}
}

// CommitTap records a tap in a single transaction:
//
//  1. share-lock the round row (blocks behind finalization's FOR UPDATE)
//  2. admit the tap against the locked round
//  3. take the user's next sequence number from the counter row
//  4. insert the tap, deduplicated on its id
//  5. read the user's cumulative totals, including this tap
//
// Any failure rolls everything back, including the counter bump.
func (r *Repository) CommitTap(ctx context.Context, req SubmitTapRequest, admit AdmitFunc) (*models.TapResult, error) {
	var result *models.TapResult

	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		dbRound, err := q.GetRoundForShare(ctx, req.RoundID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return game.ErrRoundNotFound
			}
			return fmt.Errorf("failed to lock round: %w", err)
		}

		if err := admit(dbRoundToModel(dbRound)); err != nil {
			return err
		}

		seq, err := q.NextTapSeq(ctx, db.NextTapSeqParams{
			RoundID: req.RoundID,
			UserID:  req.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to allocate tap sequence: %w", err)
		}

		points := game.PointsFor(req.Role, seq)
		if _, err := q.InsertTap(ctx, db.InsertTapParams{
			ID:      req.TapID,
			UserID:  req.UserID,
			RoundID: req.RoundID,
			Seq:     seq,
			Points:  points,
		}); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return game.ErrDuplicateTap
			}
			return fmt.Errorf("failed to insert tap: %w", err)
		}

		totals, err := q.GetLiveStats(ctx, db.GetLiveStatsParams{
			RoundID: req.RoundID,
			UserID:  req.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to read player totals: %w", err)
		}

		result = &models.TapResult{
			TapID:  req.TapID,
			Taps:   totals.Taps,
			Score:  totals.Score,
			Points: points,
		}
		return nil
	})
	if err != nil {
		if sqlutil.IsRetryable(err) {
			return nil, fmt.Errorf("%w: %w", game.ErrStoreUnavailable, err)
		}
		return nil, err
	}

	return result, nil
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
