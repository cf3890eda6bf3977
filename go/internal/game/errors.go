package game

import "errors"

// Client-visible failures. None of them leave a tap or aggregate behind.
var (
	ErrRoundNotFound  = errors.New("round not found")
	ErrRoundNotActive = errors.New("round is not active")
	ErrDuplicateTap   = errors.New("tap already counted")
	ErrInvalidRound   = errors.New("invalid round")
	ErrInvalidTap     = errors.New("invalid tap")
)

// ErrStoreUnavailable marks a timeout or contention failure in the store.
// The caller may retry with the same tap id.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrFinalizationConflict means another finalization already won the race.
// It never leaves the lifecycle manager.
var ErrFinalizationConflict = errors.New("round already finalized")
