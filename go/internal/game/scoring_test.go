package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/gooseclicker/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFor(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		seq  int64
		want int32
	}{
		{"first tap", models.RoleStandard, 1, 1},
		{"tenth tap", models.RoleStandard, 10, 1},
		{"eleventh tap", models.RoleStandard, 11, 10},
		{"twelfth tap", models.RoleStandard, 12, 1},
		{"twenty second tap", models.RoleStandard, 22, 10},
		{"admin scores like everyone", models.RoleAdmin, 11, 10},
		{"special on bonus", models.RoleSpecial, 11, 0},
		{"special on first", models.RoleSpecial, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointsFor(tt.role, tt.seq))
		})
	}
}

func TestScoreFor_MatchesSummedPoints(t *testing.T) {
	for _, role := range []models.Role{models.RoleStandard, models.RoleAdmin, models.RoleSpecial} {
		var sum int64
		for n := int64(1); n <= 250; n++ {
			sum += int64(PointsFor(role, n))
			require.Equalf(t, sum, ScoreFor(role, n), "role=%s n=%d", role, n)
		}
	}

	assert.Equal(t, int64(20), ScoreFor(models.RoleStandard, 11))
	assert.Equal(t, int64(181), ScoreFor(models.RoleStandard, 100))
	assert.Equal(t, int64(0), ScoreFor(models.RoleSpecial, 100))
	assert.Equal(t, int64(0), ScoreFor(models.RoleStandard, 0))
}

func TestReplay(t *testing.T) {
	roundID := uuid.New()
	alice, nikita := uuid.New(), uuid.New()

	var entries []LedgerEntry
	for i := 1; i <= 11; i++ {
		entries = append(entries, LedgerEntry{TapID: uuid.NewString(), UserID: alice, Role: models.RoleStandard, Points: PointsFor(models.RoleStandard, int64(i))})
	}
	for i := 0; i < 5; i++ {
		entries = append(entries, LedgerEntry{TapID: uuid.NewString(), UserID: nikita, Role: models.RoleSpecial})
	}

	res := Replay(roundID, entries)

	require.Len(t, res.Players, 2)
	assert.Equal(t, models.PlayerStats{UserID: alice, RoundID: roundID, Taps: 11, Score: 20}, res.Players[0])
	assert.Equal(t, models.PlayerStats{UserID: nikita, RoundID: roundID, Taps: 5, Score: 0}, res.Players[1])
	assert.Equal(t, int64(20), res.TotalScore)
	assert.Equal(t, int64(16), res.TotalTaps)
	assert.Zero(t, res.Drifted)
}

func TestReplay_IgnoresLivePoints(t *testing.T) {
	user := uuid.New()
	entries := make([]LedgerEntry, 11)
	for i := range entries {
		// a racy live counter handing every tap the same seq would have scored 1 each
		entries[i] = LedgerEntry{TapID: uuid.NewString(), UserID: user, Role: models.RoleStandard, Points: 1}
	}

	res := Replay(uuid.New(), entries)

	assert.Equal(t, int64(20), res.TotalScore)
	assert.Equal(t, 1, res.Drifted)
}

func TestReplay_Empty(t *testing.T) {
	res := Replay(uuid.New(), nil)
	assert.Empty(t, res.Players)
	assert.Zero(t, res.TotalScore)
}
