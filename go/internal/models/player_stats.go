package models

import (
	"github.com/google/uuid"
)

// PlayerStats is the per-(user, round) aggregate. While a round is running it
// is computed from the ledger; once FINISHED it is the immutable stored row.
type PlayerStats struct {
	UserID   uuid.UUID `json:"userId"`
	RoundID  uuid.UUID `json:"roundId"`
	Username string    `json:"username,omitempty"`
	Taps     int64     `json:"taps"`
	Score    int64     `json:"score"`
}

// RoundLeaderboard groups every player's stats for a round, score descending.
type RoundLeaderboard struct {
	RoundID      uuid.UUID     `json:"roundId"`
	Status       RoundStatus   `json:"status"`
	TotalPlayers int           `json:"totalPlayers"`
	TotalTaps    int64         `json:"totalTaps"`
	Players      []PlayerStats `json:"players"`
}
