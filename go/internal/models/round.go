package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus is monotonic: COOLDOWN -> ACTIVE -> FINISHED.
type RoundStatus string

const (
	RoundStatusCooldown RoundStatus = "COOLDOWN"
	RoundStatusActive   RoundStatus = "ACTIVE"
	RoundStatusFinished RoundStatus = "FINISHED"
)

func (s RoundStatus) Valid() bool {
	switch s {
	case RoundStatusCooldown, RoundStatusActive, RoundStatusFinished:
		return true
	}
	return false
}

// Round represents one timed play session
type Round struct {
	ID          uuid.UUID   `json:"id"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     time.Time   `json:"endTime"`
	CooldownEnd time.Time   `json:"cooldownEnd"`
	Status      RoundStatus `json:"status"`
	TotalScore  int64       `json:"totalScore"`
	CreatedAt   time.Time   `json:"createdAt"`
	FinalizedAt *time.Time  `json:"finalizedAt,omitempty"`
}

// RoundDetails is a round together with its live or final leaderboard and the
// server clock, so clients can sync their countdowns.
type RoundDetails struct {
	Round
	PlayerStats []PlayerStats `json:"playerStats"`
	ServerTime  time.Time     `json:"serverTime"`
}
