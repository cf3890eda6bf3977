package round_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gooseclicker/go/internal/game"
	gamedb "github.com/mcdev12/gooseclicker/go/internal/game/db"
	"github.com/mcdev12/gooseclicker/go/internal/game/events"
	"github.com/mcdev12/gooseclicker/go/internal/game/round"
	"github.com/mcdev12/gooseclicker/go/internal/game/tap"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/mcdev12/gooseclicker/go/internal/testutil/containers"
	"github.com/mcdev12/gooseclicker/go/internal/users"
	usersdb "github.com/mcdev12/gooseclicker/go/internal/users/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, events.Envelope) error { return nil }

type stack struct {
	db     *sql.DB
	clock  *clockwork.FakeClock
	rounds *round.App
	taps   *tap.App
	users  *users.Repository
}

func newStack(t *testing.T, retainLedger bool) *stack {
	t.Helper()
	database, _ := containers.MigratedDB(t)

	clock := clockwork.NewFakeClockAt(time.Now().UTC().Truncate(time.Millisecond))
	queries := gamedb.New(database)

	return &stack{
		db:     database,
		clock:  clock,
		rounds: round.NewApp(round.NewRepository(queries, database, retainLedger), discardNotifier{}, clock, nil, round.DefaultConfig()),
		taps:   tap.NewApp(tap.NewRepository(queries, database), discardNotifier{}, clock, nil, tap.DefaultConfig()),
		users:  users.NewRepository(usersdb.New(database)),
	}
}

func (s *stack) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, _, err := s.users.FindOrCreate(context.Background(), name, users.DeriveRole(name))
	require.NoError(t, err)
	return u
}

// activeRound creates a round that started a second ago.
func (s *stack) activeRound(t *testing.T) *models.Round {
	t.Helper()
	start := s.clock.Now().Add(-time.Second)
	r, err := s.rounds.CreateRound(context.Background(), round.CreateRoundRequest{StartTime: &start})
	require.NoError(t, err)
	require.Equal(t, models.RoundStatusActive, r.Status)
	return r
}

func (s *stack) tapOnce(u *models.User, roundID uuid.UUID, tapID string) (*models.TapResult, error) {
	return s.taps.SubmitTap(context.Background(), tap.SubmitTapRequest{
		UserID:  u.ID,
		RoundID: roundID,
		TapID:   tapID,
		Role:    u.Role,
	})
}

func TestIntegration_DuplicateTapIDCountedOnce(t *testing.T) {
	s := newStack(t, false)
	u := s.user(t, "duplicator")
	r := s.activeRound(t)
	tapID := fmt.Sprintf("%s-%s-1760000000000-k3j9x0abc", u.ID, r.ID)

	const attempts = 20
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		accepted   int
		duplicates int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.tapOnce(u, r.ID, tapID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, game.ErrDuplicateTap):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, attempts-1, duplicates)

	stats, err := s.rounds.GetPlayerStats(context.Background(), u.ID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Taps)
	assert.Equal(t, int64(1), stats.Score)
}

func TestIntegration_TapIDOwnedByAnotherUserIsDuplicate(t *testing.T) {
	s := newStack(t, false)
	alice := s.user(t, "alice")
	bob := s.user(t, "bob")
	r := s.activeRound(t)
	ctx := context.Background()

	shared := fmt.Sprintf("%s-%s-1760000000000-a1b2c3", alice.ID, r.ID)
	first, err := s.tapOnce(alice, r.ID, shared)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Taps)

	_, err = s.tapOnce(bob, r.ID, shared)
	assert.ErrorIs(t, err, game.ErrDuplicateTap)

	for range 3 {
		_, err := s.tapOnce(alice, r.ID, shared)
		assert.ErrorIs(t, err, game.ErrDuplicateTap)
	}

	// rejected duplicates must not advance the sequence, so the bonus lands
	// on alice's 11th counted tap
	var last *models.TapResult
	for range 10 {
		last, err = s.tapOnce(alice, r.ID, uuid.NewString())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(11), last.Taps)
	assert.Equal(t, int64(20), last.Score)
	assert.Equal(t, int32(game.BonusPoints), last.Points)

	live, err := s.rounds.GetPlayerStats(ctx, alice.ID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, int64(20), live.Score)

	bobStats, err := s.rounds.GetPlayerStats(ctx, bob.ID, r.ID)
	require.NoError(t, err)
	assert.Nil(t, bobStats)

	s.clock.Advance(round.DefaultConfig().RoundDuration)
	result, err := s.rounds.FinalizeRound(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Drifted)
	assert.Equal(t, int64(11), result.TotalTaps)
	assert.Equal(t, int64(20), result.Round.TotalScore)
	require.Len(t, result.Players, 1)
	assert.Equal(t, alice.ID, result.Players[0].UserID)

	bobStats, err = s.rounds.GetPlayerStats(ctx, bob.ID, r.ID)
	require.NoError(t, err)
	assert.Nil(t, bobStats)
}

func TestIntegration_ConcurrentPlayersFinalizeConsistently(t *testing.T) {
	s := newStack(t, false)
	r := s.activeRound(t)

	const (
		players = 5
		taps    = 30
	)
	roster := make([]*models.User, 0, players+1)
	for i := range players {
		roster = append(roster, s.user(t, fmt.Sprintf("player-%d", i)))
	}
	special := s.user(t, "Никита")
	require.Equal(t, models.RoleSpecial, special.Role)
	roster = append(roster, special)

	var wg sync.WaitGroup
	for _, u := range roster {
		for range taps {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.tapOnce(u, r.ID, uuid.NewString()); err != nil {
					t.Errorf("tap for %s: %v", u.Username, err)
				}
			}()
		}
	}
	wg.Wait()

	live, err := s.rounds.GetAllPlayerStats(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusActive, live.Status)
	assert.Equal(t, int64(len(roster)*taps), live.TotalTaps)

	s.clock.Advance(round.DefaultConfig().RoundDuration)
	result, err := s.rounds.FinalizeRound(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Drifted)
	assert.Equal(t, int64(len(roster)*taps), result.TotalTaps)

	standardScore := game.ScoreFor(models.RoleStandard, taps)
	assert.Equal(t, int64(48), standardScore)
	assert.Equal(t, standardScore*players, result.Round.TotalScore)

	final, err := s.rounds.GetAllPlayerStats(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinished, final.Status)
	require.Len(t, final.Players, len(roster))

	var sum int64
	for _, p := range final.Players {
		assert.Equal(t, int64(taps), p.Taps)
		if p.UserID == special.ID {
			assert.Zero(t, p.Score)
		} else {
			assert.Equal(t, standardScore, p.Score)
		}
		sum += p.Score
	}

	details, err := s.rounds.GetRound(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, sum, details.TotalScore)
	assert.NotNil(t, details.FinalizedAt)

	_, err = s.rounds.FinalizeRound(context.Background(), r.ID)
	assert.ErrorIs(t, err, game.ErrFinalizationConflict)

	again, err := s.rounds.GetRound(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, details.TotalScore, again.TotalScore)
}

func TestIntegration_TapsRacingFinalizationAreCountedOrRejected(t *testing.T) {
	s := newStack(t, true)
	u := s.user(t, "racer")
	r := s.activeRound(t)

	s.clock.Advance(round.DefaultConfig().RoundDuration - 2*time.Second)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int64
	)
	start := make(chan struct{})
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.tapOnce(u, r.ID, uuid.NewString())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, game.ErrRoundNotActive):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	s.clock.Advance(3 * time.Second)
	_, err := s.rounds.FinalizeRound(context.Background(), r.ID)
	require.NoError(t, err)
	wg.Wait()

	_, err = s.tapOnce(u, r.ID, uuid.NewString())
	assert.ErrorIs(t, err, game.ErrRoundNotActive)

	stats, err := s.rounds.GetPlayerStats(context.Background(), u.ID, r.ID)
	require.NoError(t, err)
	if accepted == 0 {
		assert.Nil(t, stats)
		return
	}
	require.NotNil(t, stats)
	assert.Equal(t, accepted, stats.Taps)
	assert.Equal(t, game.ScoreFor(models.RoleStandard, accepted), stats.Score)

	details, err := s.rounds.GetRound(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.Score, details.TotalScore)
}

func TestIntegration_PollerPassActivatesAndFinalizes(t *testing.T) {
	s := newStack(t, false)
	u := s.user(t, "early-bird")

	r, err := s.rounds.CreateRound(context.Background(), round.CreateRoundRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusCooldown, r.Status)

	_, err = s.tapOnce(u, r.ID, uuid.NewString())
	assert.ErrorIs(t, err, game.ErrRoundNotActive)

	cfg := round.DefaultConfig()
	s.clock.Advance(cfg.CooldownDuration)
	advanced, err := s.rounds.AdvanceStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r.ID}, advanced.Activated)

	for range 11 {
		_, err := s.tapOnce(u, r.ID, uuid.NewString())
		require.NoError(t, err)
	}

	s.clock.Advance(cfg.RoundDuration)
	advanced, err = s.rounds.AdvanceStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r.ID}, advanced.Finalized)

	details, err := s.rounds.GetRound(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusFinished, details.Status)
	assert.Equal(t, int64(20), details.TotalScore)
	require.Len(t, details.PlayerStats, 1)
	assert.Equal(t, int64(11), details.PlayerStats[0].Taps)

	rounds, err := s.rounds.ListRounds(context.Background(), round.ListRoundsRequest{})
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, models.RoundStatusFinished, rounds[0].Status)
}
