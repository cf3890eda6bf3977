// Package notifier carries committed game events from the instance that
// produced them to every instance's websocket subscribers.
package notifier

import (
	"context"
	"errors"

	"github.com/mcdev12/gooseclicker/go/internal/game/events"
)

// Notifier hands a committed event to whatever fans it out. Delivery is at
// least once; consumers deduplicate on EventID.
type Notifier interface {
	Notify(ctx context.Context, env events.Envelope) error
}

// Sink delivers events to this instance's subscribers. Deliver must not block.
type Sink interface {
	Deliver(env events.Envelope)
}

// Local delivers to this instance only.
type Local struct {
	sink Sink
}

func NewLocal(sink Sink) *Local {
	return &Local{sink: sink}
}

func (l *Local) Notify(_ context.Context, env events.Envelope) error {
	l.sink.Deliver(env)
	return nil
}

// Multi notifies every backend in order and joins their errors. A failing
// backend does not stop the ones after it.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, env events.Envelope) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Checker reports whether a backend can currently deliver.
type Checker interface {
	Check(ctx context.Context) error
}
