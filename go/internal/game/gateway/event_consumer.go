package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/game/notifier"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConsumerConfig holds configuration for the JetStream consumer
type JetStreamConsumerConfig struct {
	StreamName    string
	SubjectPrefix string
}

// EventConsumer feeds JetStream events into the local connection manager.
// Each instance runs its own ordered consumer starting at new messages, so
// every gateway sees every event once the stream is reachable.
type EventConsumer struct {
	js     jetstream.JetStream
	sink   notifier.Sink
	config JetStreamConsumerConfig
}

func NewEventConsumer(js jetstream.JetStream, sink notifier.Sink, config JetStreamConsumerConfig) *EventConsumer {
	return &EventConsumer{
		js:     js,
		sink:   sink,
		config: config,
	}
}

// Run consumes until ctx is done.
func (ec *EventConsumer) Run(ctx context.Context) error {
	consumer, err := ec.js.OrderedConsumer(ctx, ec.config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{ec.config.SubjectPrefix + ".>"},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create ordered consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := ec.processMessage(msg); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("Failed to process message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	log.Info().
		Str("stream", ec.config.StreamName).
		Str("subjects", ec.config.SubjectPrefix+".>").
		Msg("JetStream event consumer started")

	<-ctx.Done()
	log.Info().Msg("Event consumer shutting down")
	return nil
}

func (ec *EventConsumer) processMessage(msg jetstream.Msg) error {
	var env events.Envelope
	if err := json.Unmarshal(msg.Data(), &env); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	ec.sink.Deliver(env)
	return nil
}
