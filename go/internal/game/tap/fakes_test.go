package tap

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// FakeTapRepository is an in-memory ledger with the same admission and dedup
// semantics as the Postgres repository. CommitTapFunc overrides it.
type FakeTapRepository struct {
	CommitTapFunc func(ctx context.Context, req SubmitTapRequest, admit AdmitFunc) (*models.TapResult, error)

	mu     sync.Mutex
	rounds map[uuid.UUID]models.Round
	taps   map[string]models.Tap
	seqs   map[[2]uuid.UUID]int64
}

func NewFakeTapRepository(rounds ...models.Round) *FakeTapRepository {
	f := &FakeTapRepository{
		rounds: make(map[uuid.UUID]models.Round),
		taps:   make(map[string]models.Tap),
		seqs:   make(map[[2]uuid.UUID]int64),
	}
	for _, r := range rounds {
		f.rounds[r.ID] = r
	}
	return f
}

func (f *FakeTapRepository) CommitTap(ctx context.Context, req SubmitTapRequest, admit AdmitFunc) (*models.TapResult, error) {
	if f.CommitTapFunc != nil {
		return f.CommitTapFunc(ctx, req, admit)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	round, ok := f.rounds[req.RoundID]
	if !ok {
		return nil, game.ErrRoundNotFound
	}
	if err := admit(round); err != nil {
		return nil, err
	}
	if _, dup := f.taps[req.TapID]; dup {
		return nil, game.ErrDuplicateTap
	}

	key := [2]uuid.UUID{req.RoundID, req.UserID}
	f.seqs[key]++
	seq := f.seqs[key]
	points := game.PointsFor(req.Role, seq)
	f.taps[req.TapID] = models.Tap{ID: req.TapID, UserID: req.UserID, RoundID: req.RoundID, Seq: seq, Points: points}

	var score int64
	for _, t := range f.taps {
		if t.RoundID == req.RoundID && t.UserID == req.UserID {
			score += int64(t.Points)
		}
	}
	return &models.TapResult{TapID: req.TapID, Taps: seq, Score: score, Points: points}, nil
}

func (f *FakeTapRepository) TapCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.taps)
}

type FakeNotifier struct {
	NotifyFunc func(ctx context.Context, env events.Envelope) error

	mu   sync.Mutex
	sent []events.Envelope
}

func (f *FakeNotifier) Notify(ctx context.Context, env events.Envelope) error {
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
	if f.NotifyFunc != nil {
		return f.NotifyFunc(ctx, env)
	}
	return nil
}

func (f *FakeNotifier) Sent() []events.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Envelope(nil), f.sent...)
}
