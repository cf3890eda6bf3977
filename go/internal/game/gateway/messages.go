package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// Message is what websocket clients receive. Tap messages carry the tapping
// user's running stats; round messages carry the event payload as is.
type Message struct {
	Type      events.EventType    `json:"type"`
	EventID   string              `json:"eventId"`
	RoundID   uuid.UUID           `json:"roundId"`
	UserID    *uuid.UUID          `json:"userId,omitempty"`
	TapID     string              `json:"tapId,omitempty"`
	Stats     *models.PlayerStats `json:"stats,omitempty"`
	Payload   json.RawMessage     `json:"payload,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// ToMessage converts a notifier envelope into the client wire format.
func ToMessage(env events.Envelope) (Message, error) {
	msg := Message{
		Type:      env.EventType,
		EventID:   env.EventID,
		RoundID:   env.RoundID,
		Timestamp: env.Timestamp,
	}

	switch env.EventType {
	case events.EventTypeTap:
		var p events.TapCommittedPayload
		if err := env.Decode(&p); err != nil {
			return Message{}, err
		}
		msg.UserID = &p.UserID
		msg.TapID = p.TapID
		msg.Stats = &models.PlayerStats{
			UserID:  p.UserID,
			RoundID: p.RoundID,
			Taps:    p.Taps,
			Score:   p.Score,
		}
	case events.EventTypeRoundCreated, events.EventTypeRoundFinished:
		msg.Payload = env.Payload
	default:
		return Message{}, fmt.Errorf("unknown event type: %s", env.EventType)
	}

	return msg, nil
}
