package game

import (
	"time"

	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// IsOpen reports whether now falls inside the half-open window [start, end).
func IsOpen(now, start, end time.Time) bool {
	return !now.Before(start) && now.Before(end)
}

// StatusAt is the status a round should have at now, ignoring finalization.
// A round past its end is reported ACTIVE until finalization marks it FINISHED.
func StatusAt(now, start time.Time) models.RoundStatus {
	if now.Before(start) {
		return models.RoundStatusCooldown
	}
	return models.RoundStatusActive
}

// AcceptsTaps decides whether a tap at now may be committed against r.
// FINISHED is sticky and always rejects. Otherwise the clock is authoritative
// since the stored status may lag by up to one poller tick.
func AcceptsTaps(r models.Round, now time.Time) bool {
	if r.Status == models.RoundStatusFinished {
		return false
	}
	return IsOpen(now, r.StartTime, r.EndTime)
}
