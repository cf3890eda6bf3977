package models

import (
	"time"

	"github.com/google/uuid"
)

// Tap is a single ledger entry. ID is the client-supplied idempotency key.
type Tap struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	RoundID   uuid.UUID `json:"roundId"`
	Seq       int64     `json:"seq"`
	Points    int32     `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

// TapResult is returned to the tapping user: their cumulative totals for the
// round including the tap just committed.
type TapResult struct {
	TapID  string `json:"tapId"`
	Taps   int64     `json:"taps"`
	Score  int64     `json:"score"`
	Points int32     `json:"points"`
}
