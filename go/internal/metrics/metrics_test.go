package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)

	m.RecordTap(TapAccepted, 2*time.Millisecond)
	m.RecordTap(TapAccepted, 3*time.Millisecond)
	m.RecordTap(TapDuplicate, time.Millisecond)
	m.RecordFinalization(FinalizeDone, 40*time.Millisecond, 16)
	m.RecordReplayDrift(2)
	m.RecordPublishAttempt("tap", 1, false)
	m.RecordPublishAttempt("tap", 2, true)
	m.SetConnections(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.taps.WithLabelValues(TapAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.taps.WithLabelValues(TapDuplicate)))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.finalizedTaps))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.replayDrift))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishAttempts.WithLabelValues("tap", "2", "success")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.connections))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNoOp_SatisfiesCollector(t *testing.T) {
	var c Collector = NoOp{}
	c.RecordTap(TapAccepted, time.Millisecond)
	c.SetConnections(1)
}
