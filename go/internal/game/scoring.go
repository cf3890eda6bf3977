package game

import (
	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

const (
	// BonusEvery is the tap interval that earns BonusPoints instead of BasePoints.
	BonusEvery  = 11
	BasePoints  = 1
	BonusPoints = 10
)

// PointsFor returns the value of a user's seq-th tap (1-based) in a round.
func PointsFor(role models.Role, seq int64) int32 {
	if role == models.RoleSpecial {
		return 0
	}
	if seq > 0 && seq%BonusEvery == 0 {
		return BonusPoints
	}
	return BasePoints
}

// ScoreFor is the closed form of summing PointsFor over taps 1..n.
func ScoreFor(role models.Role, n int64) int64 {
	if role == models.RoleSpecial || n <= 0 {
		return 0
	}
	return n + (BonusPoints-BasePoints)*(n/BonusEvery)
}

// LedgerEntry is one tap as read back for replay.
type LedgerEntry struct {
	TapID  string
	UserID uuid.UUID
	Role   models.Role
	// Points is what ingestion assigned; replay does not trust it.
	Points int32
}

// ReplayResult is the outcome of collapsing a round's ledger.
type ReplayResult struct {
	Players    []models.PlayerStats
	TotalScore int64
	TotalTaps  int64
	// Drifted counts taps whose live points disagree with the replayed value.
	Drifted int
}

// Replay recomputes every user's taps and score from scratch. entries must be
// grouped by user and in commit order within each user; that order defines
// which taps land on a bonus.
func Replay(roundID uuid.UUID, entries []LedgerEntry) ReplayResult {
	var (
		res   ReplayResult
		index = make(map[uuid.UUID]int)
	)

	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(res.Players)
			index[e.UserID] = i
			res.Players = append(res.Players, models.PlayerStats{UserID: e.UserID, RoundID: roundID})
		}

		p := &res.Players[i]
		p.Taps++
		pts := PointsFor(e.Role, p.Taps)
		p.Score += int64(pts)

		if pts != e.Points {
			res.Drifted++
		}
		res.TotalScore += int64(pts)
		res.TotalTaps++
	}

	return res
}
