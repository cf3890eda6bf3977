package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, c.Server.Port)
	assert.Equal(t, 60*time.Second, c.Rounds.Duration)
	assert.Equal(t, 30*time.Second, c.Rounds.Cooldown)
	assert.Equal(t, time.Second, c.Rounds.PollInterval)
	assert.Equal(t, 3*time.Second, c.Store.Timeout)
	assert.Equal(t, BackendPostgres, c.Notifier.Backend)
	assert.Equal(t, "tap_events", c.Notifier.Channel)
	assert.True(t, c.UsesDefaultSecret())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
rounds:
  duration: 2m
  retain_ledger: true
notifier:
  backend: nats
  stream: GOOSE
`), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("COOLDOWN_DURATION", "5")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port, "env wins over file")
	assert.Equal(t, 2*time.Minute, c.Rounds.Duration)
	assert.Equal(t, 5*time.Second, c.Rounds.Cooldown)
	assert.True(t, c.Rounds.RetainLedger)
	assert.Equal(t, BackendNATS, c.Notifier.Backend)
	assert.Equal(t, "GOOSE", c.Notifier.Stream)
	assert.False(t, c.UsesDefaultSecret())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero round duration", map[string]string{"ROUND_DURATION": "0"}},
		{"bad poll interval", map[string]string{"POLL_INTERVAL": "soon"}},
		{"unknown backend", map[string]string{"NOTIFIER_BACKEND": "carrier-pigeon"}},
		{"bad retain flag", map[string]string{"RETAIN_LEDGER": "maybe"}},
		{"negative rate", map[string]string{"TAP_RATE_LIMIT": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
