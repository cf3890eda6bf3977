package round

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/game"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/models"
)

// FakeRoundRepository keeps rounds, a ledger and final aggregates in memory
// and finalizes with the same replay as the Postgres repository.
type FakeRoundRepository struct {
	FinalizeRoundFunc     func(ctx context.Context, id uuid.UUID, now time.Time) (*FinalizeResult, error)
	ActivateDueRoundsFunc func(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	mu      sync.Mutex
	rounds  map[uuid.UUID]models.Round
	ledger  map[uuid.UUID][]game.LedgerEntry
	final   map[uuid.UUID][]models.PlayerStats
	created []models.Round
}

func NewFakeRoundRepository(rounds ...models.Round) *FakeRoundRepository {
	f := &FakeRoundRepository{
		rounds: make(map[uuid.UUID]models.Round),
		ledger: make(map[uuid.UUID][]game.LedgerEntry),
		final:  make(map[uuid.UUID][]models.PlayerStats),
	}
	for _, r := range rounds {
		f.rounds[r.ID] = r
	}
	return f
}

// AddTaps appends n taps for user using the live scoring rule.
func (f *FakeRoundRepository) AddTaps(roundID, userID uuid.UUID, role models.Role, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var seq int64
	for _, e := range f.ledger[roundID] {
		if e.UserID == userID {
			seq++
		}
	}
	for i := 0; i < n; i++ {
		seq++
		f.ledger[roundID] = append(f.ledger[roundID], game.LedgerEntry{
			TapID:  uuid.NewString(),
			UserID: userID,
			Role:   role,
			Points: game.PointsFor(role, seq),
		})
	}
}

func (f *FakeRoundRepository) Round(id uuid.UUID) models.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rounds[id]
}

func (f *FakeRoundRepository) CreateRound(ctx context.Context, round models.Round) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	round.CreatedAt = round.StartTime
	f.rounds[round.ID] = round
	f.created = append(f.created, round)
	return &round, nil
}

func (f *FakeRoundRepository) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok {
		return nil, game.ErrRoundNotFound
	}
	return &r, nil
}

func (f *FakeRoundRepository) ListRounds(ctx context.Context, status *models.RoundStatus, limit int) ([]models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Round
	for _, r := range f.rounds {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRoundRepository) ActivateDueRounds(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if f.ActivateDueRoundsFunc != nil {
		return f.ActivateDueRoundsFunc(ctx, now)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, r := range f.rounds {
		if r.Status == models.RoundStatusCooldown && !now.Before(r.StartTime) {
			r.Status = models.RoundStatusActive
			f.rounds[id] = r
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *FakeRoundRepository) ListRoundsDueForFinalization(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id, r := range f.rounds {
		if r.Status == models.RoundStatusActive && !now.Before(r.EndTime) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *FakeRoundRepository) FinalizeRound(ctx context.Context, id uuid.UUID, now time.Time) (*FinalizeResult, error) {
	if f.FinalizeRoundFunc != nil {
		return f.FinalizeRoundFunc(ctx, id, now)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rounds[id]
	switch {
	case !ok:
		return nil, game.ErrRoundNotFound
	case r.Status == models.RoundStatusFinished:
		return nil, game.ErrFinalizationConflict
	case now.Before(r.EndTime):
		return nil, game.ErrRoundNotActive
	}

	replay := game.Replay(id, f.ledger[id])
	r.Status = models.RoundStatusFinished
	r.TotalScore = replay.TotalScore
	r.FinalizedAt = &now
	f.rounds[id] = r
	f.final[id] = replay.Players
	deleted := int64(len(f.ledger[id]))
	delete(f.ledger, id)

	return &FinalizeResult{
		Round:             r,
		Players:           replay.Players,
		TotalTaps:         replay.TotalTaps,
		Drifted:           replay.Drifted,
		LedgerRowsDeleted: deleted,
	}, nil
}

func (f *FakeRoundRepository) PlayerStats(ctx context.Context, userID, roundID uuid.UUID) (*models.Round, *models.PlayerStats, error) {
	r, players, err := f.Leaderboard(ctx, roundID)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range players {
		if p.UserID == userID {
			return r, &p, nil
		}
	}
	return r, nil, nil
}

func (f *FakeRoundRepository) Leaderboard(ctx context.Context, roundID uuid.UUID) (*models.Round, []models.PlayerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[roundID]
	if !ok {
		return nil, nil, game.ErrRoundNotFound
	}
	if r.Status == models.RoundStatusFinished {
		return &r, append([]models.PlayerStats(nil), f.final[roundID]...), nil
	}
	return &r, game.Replay(roundID, f.ledger[roundID]).Players, nil
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

type FakeWaker struct {
	mu    sync.Mutex
	woken int
}

func (f *FakeWaker) Wake() {
	f.mu.Lock()
	f.woken++
	f.mu.Unlock()
}

func (f *FakeWaker) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.woken
}
