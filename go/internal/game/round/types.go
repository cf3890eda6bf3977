package round

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// CreateRoundRequest schedules a round. A nil StartTime means now + cooldown.
type CreateRoundRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
}

// ListRoundsRequest filters ListRounds. Zero values mean no filter and the
// default limit.
type ListRoundsRequest struct {
	Status *models.RoundStatus
	Limit  int
}

// FinalizeResult describes one committed finalization.
type FinalizeResult struct {
	Round     models.Round
	Players   []models.PlayerStats
	TotalTaps int64
	// Drifted counts taps whose live points were corrected by the replay.
	Drifted int
	// LedgerRowsDeleted is zero when the ledger is retained.
	LedgerRowsDeleted int64
}

// AdvanceResult summarizes one advanceStatuses pass.
type AdvanceResult struct {
	Activated []uuid.UUID
	Finalized []uuid.UUID
	// Skipped rounds were finalized elsewhere first.
	Skipped int
}
