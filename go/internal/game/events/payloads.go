package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// Event payload types that are shared between the game core, the notifier
// backends and the websocket gateway

type EventType string

const (
	EventTypeTap           EventType = "tap"
	EventTypeRoundCreated  EventType = "round.created"
	EventTypeRoundFinished EventType = "round.finished"
)

// Envelope is the wire form on every notifier backend. EventID is stable
// across redeliveries so consumers and JetStream can deduplicate.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType EventType       `json:"eventType"`
	RoundID   uuid.UUID       `json:"roundId"`
	Origin    string          `json:"origin,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.EventType, err)
	}
	return nil
}

// TapCommittedPayload is emitted once per committed tap
type TapCommittedPayload struct {
	RoundID uuid.UUID `json:"roundId"`
	UserID  uuid.UUID `json:"userId"`
	TapID   string    `json:"tapId"`
	Taps    int64     `json:"taps"`
	Score   int64     `json:"score"`
	Points  int32     `json:"points"`
}

// RoundCreatedPayload is emitted when an admin schedules a round
type RoundCreatedPayload struct {
	Round models.Round `json:"round"`
}

// RoundFinishedPayload is emitted after finalization commits. The
// leaderboard itself is not included; pg_notify payloads are capped at 8kB.
type RoundFinishedPayload struct {
	RoundID      uuid.UUID `json:"roundId"`
	TotalScore   int64     `json:"totalScore"`
	TotalPlayers int       `json:"totalPlayers"`
	TotalTaps    int64     `json:"totalTaps"`
	FinalizedAt  time.Time `json:"finalizedAt"`
}

// NewTapCommitted wraps p. The event id is derived from the tap id, which is
// unique across rounds.
func NewTapCommitted(p TapCommittedPayload, at time.Time) (Envelope, error) {
	return newEnvelope(string(EventTypeTap)+":"+p.TapID, EventTypeTap, p.RoundID, at, p)
}

func NewRoundCreated(r models.Round, at time.Time) (Envelope, error) {
	return newEnvelope(string(EventTypeRoundCreated)+":"+r.ID.String(), EventTypeRoundCreated, r.ID, at, RoundCreatedPayload{Round: r})
}

func NewRoundFinished(p RoundFinishedPayload) (Envelope, error) {
	return newEnvelope(string(EventTypeRoundFinished)+":"+p.RoundID.String(), EventTypeRoundFinished, p.RoundID, p.FinalizedAt, p)
}

func newEnvelope(id string, t EventType, roundID uuid.UUID, at time.Time, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return Envelope{
		EventID:   id,
		EventType: t,
		RoundID:   roundID,
		Timestamp: at.UTC(),
		Payload:   raw,
	}, nil
}
