package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestChecker_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		notifier   CheckFunc
		wantStatus int
		wantErrors int
	}{
		{"all healthy", ok, http.StatusOK, 0},
		{"notifier down", func(context.Context) error { return errors.New("listener is not connected") }, http.StatusServiceUnavailable, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(time.Second).
				Add("database", ok).
				Add("notifier", tt.notifier)

			rec := httptest.NewRecorder()
			c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var status Status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, "ok", status.Checks["database"])
			assert.Len(t, status.Errors, tt.wantErrors)
		})
	}
}

func TestChecker_BoundsSlowChecks(t *testing.T) {
	c := NewChecker(20 * time.Millisecond).Add("database", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "down", status.Checks["database"])
}
