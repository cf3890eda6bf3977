package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

type RelayConfig struct {
	DatabaseURL  string // Postgres DSN for LISTEN/NOTIFY
	Channel      string // Channel name to LISTEN on
	Origin       string // This instance's id; its own events are skipped
	PingInterval time.Duration
	MinReconnect time.Duration
	MaxReconnect time.Duration
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Channel:      "tap_events",
		PingInterval: 90 * time.Second,
		MinReconnect: 10 * time.Second,
		MaxReconnect: time.Minute,
	}
}

// Relay listens on the notify channel and forwards other instances' events
// to the local sink. Events published while the listener is reconnecting
// are lost; clients recover by re-reading the round.
type Relay struct {
	listener  *pq.Listener
	sink      Sink
	cfg       RelayConfig
	connected atomic.Bool
}

func NewRelay(sink Sink, cfg RelayConfig) (*Relay, error) {
	r := &Relay{sink: sink, cfg: cfg}

	r.listener = pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnect,
		cfg.MaxReconnect,
		r.onListenerEvent,
	)
	if err := r.listener.Listen(cfg.Channel); err != nil {
		_ = r.listener.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.Channel).
		Str("origin", cfg.Origin).
		Msg("Listening for notifications")

	return r, nil
}

func (r *Relay) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected, pq.ListenerEventReconnected:
		r.connected.Store(true)
	case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
		r.connected.Store(false)
	}
	if err != nil {
		log.Error().Err(err).Int("event", int(ev)).Msg("Listener event")
	}
}

// Run forwards notifications until ctx is done, then closes the listener.
func (r *Relay) Run(ctx context.Context) error {
	pingTicker := time.NewTicker(r.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Relay shutting down")
			return r.Close()
		case note := <-r.listener.Notify:
			if note == nil {
				// nil notification means the connection was re-established
				log.Warn().Str("channel", r.cfg.Channel).Msg("Listener reconnected, notifications may have been missed")
				continue
			}
			if err := r.handleNotification(note.Extra); err != nil {
				log.Error().Err(err).Msg("Failed to handle notification")
			}
		case <-pingTicker.C:
			if err := r.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("Failed to ping listener")
			}
		}
	}
}

// handleNotification decodes an envelope and forwards it unless this
// instance published it.
func (r *Relay) handleNotification(extra string) error {
	var env events.Envelope
	if err := json.Unmarshal([]byte(extra), &env); err != nil {
		return fmt.Errorf("invalid event in notification: %w", err)
	}
	if env.Origin == r.cfg.Origin {
		return nil
	}

	r.sink.Deliver(env)
	return nil
}

// Check implements Checker.
func (r *Relay) Check(context.Context) error {
	if !r.connected.Load() {
		return errors.New("notification listener is not connected")
	}
	return nil
}

func (r *Relay) Close() error {
	return r.listener.Close()
}
