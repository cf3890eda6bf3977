package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/gooseclicker/go/internal/game/db"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
)

// maxNotifyPayload stays under Postgres' 8000 byte NOTIFY limit.
const maxNotifyPayload = 7900

var ErrPayloadTooLarge = errors.New("event too large for pg_notify")

// Postgres publishes events with pg_notify so every instance's Relay can
// forward them to its local subscribers.
type Postgres struct {
	queries *db.Queries
	channel string
	origin  string
}

// NewPostgres stamps every event with origin so the publishing instance's
// own Relay can skip it.
func NewPostgres(queries *db.Queries, channel, origin string) *Postgres {
	return &Postgres{
		queries: queries,
		channel: channel,
		origin:  origin,
	}
}

func (p *Postgres) Notify(ctx context.Context, env events.Envelope) error {
	env.Origin = p.origin
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if len(data) > maxNotifyPayload {
		return fmt.Errorf("%w: %s is %d bytes", ErrPayloadTooLarge, env.EventID, len(data))
	}

	if err := p.queries.Notify(ctx, db.NotifyParams{Channel: p.channel, Payload: string(data)}); err != nil {
		return fmt.Errorf("failed to notify %s: %w", p.channel, err)
	}
	return nil
}
