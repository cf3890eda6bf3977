package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTapCommitted_DerivesEventIDFromTapID(t *testing.T) {
	p := TapCommittedPayload{RoundID: uuid.New(), UserID: uuid.New(), TapID: "client-tap-1760000000000-k3j9x0abc", Taps: 11, Score: 20, Points: 10}

	env, err := NewTapCommitted(p, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "tap:"+p.TapID, env.EventID)
	assert.Equal(t, EventTypeTap, env.EventType)
	assert.Equal(t, p.RoundID, env.RoundID)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var back Envelope
	require.NoError(t, json.Unmarshal(raw, &back))
	var got TapCommittedPayload
	require.NoError(t, back.Decode(&got))
	assert.Equal(t, p, got)
}

func TestNewRoundFinished_StableEventID(t *testing.T) {
	p := RoundFinishedPayload{RoundID: uuid.New(), TotalScore: 20, FinalizedAt: time.Now()}

	a, err := NewRoundFinished(p)
	require.NoError(t, err)
	b, err := NewRoundFinished(p)
	require.NoError(t, err)

	assert.Equal(t, a.EventID, b.EventID)
}
