package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeSink struct {
	mu        sync.Mutex
	delivered []events.Envelope
}

func (f *FakeSink) Deliver(env events.Envelope) {
	f.mu.Lock()
	f.delivered = append(f.delivered, env)
	f.mu.Unlock()
}

func (f *FakeSink) Delivered() []events.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Envelope(nil), f.delivered...)
}

type FakeNotifier struct {
	NotifyFunc func(ctx context.Context, env events.Envelope) error
	calls      int
}

func (f *FakeNotifier) Notify(ctx context.Context, env events.Envelope) error {
	f.calls++
	if f.NotifyFunc != nil {
		return f.NotifyFunc(ctx, env)
	}
	return nil
}

func tapEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.NewTapCommitted(events.TapCommittedPayload{
		RoundID: uuid.New(),
		UserID:  uuid.New(),
		TapID:   uuid.NewString(),
		Taps:    1,
		Score:   1,
		Points:  1,
	}, time.Now())
	require.NoError(t, err)
	return env
}

func TestLocal_Delivers(t *testing.T) {
	sink := &FakeSink{}
	env := tapEnvelope(t)

	require.NoError(t, NewLocal(sink).Notify(context.Background(), env))
	assert.Equal(t, []events.Envelope{env}, sink.Delivered())
}

func TestMulti_RunsEveryBackend(t *testing.T) {
	boom := errors.New("boom")
	failing := &FakeNotifier{NotifyFunc: func(context.Context, events.Envelope) error { return boom }}
	ok := &FakeNotifier{}

	err := Multi{failing, ok}.Notify(context.Background(), tapEnvelope(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestSubjects(t *testing.T) {
	env := tapEnvelope(t)

	assert.Equal(t, "clicker.rounds."+env.RoundID.String()+".tap", Subject("clicker.rounds", env))
	assert.Equal(t, "clicker.rounds.>", RoundSubjects("clicker.rounds", uuid.Nil))
	assert.Equal(t, "clicker.rounds."+env.RoundID.String()+".>", RoundSubjects("clicker.rounds", env.RoundID))
}
