package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tap submission outcomes.
const (
	TapAccepted  = "accepted"
	TapDuplicate = "duplicate"
	TapNotFound  = "not_found"
	TapNotActive = "not_active"
	TapStoreBusy = "store_unavailable"
	TapError     = "error"
)

// Finalization outcomes.
const (
	FinalizeDone     = "finalized"
	FinalizeConflict = "conflict"
	FinalizeError    = "error"
)

// Collector defines the metrics the game components record
type Collector interface {
	RecordTap(result string, duration time.Duration)
	RecordFinalization(result string, duration time.Duration, taps int64)
	RecordReplayDrift(taps int)
	RecordPollerTick(success bool, duration time.Duration)
	RecordPublishAttempt(eventType string, attempt int, success bool)
	RecordEventDropped(eventType string)
	SetConnections(n int)
}

// NoOp is a no-op implementation for when metrics aren't needed
type NoOp struct{}

func (NoOp) RecordTap(string, time.Duration)                 {}
func (NoOp) RecordFinalization(string, time.Duration, int64) {}
func (NoOp) RecordReplayDrift(int)                           {}
func (NoOp) RecordPollerTick(bool, time.Duration)            {}
func (NoOp) RecordPublishAttempt(string, int, bool)          {}
func (NoOp) RecordEventDropped(string)                       {}
func (NoOp) SetConnections(int)                              {}

// Prometheus implements Collector using the Prometheus client library
type Prometheus struct {
	taps             *prometheus.CounterVec
	tapDuration      prometheus.Histogram
	finalizations    *prometheus.CounterVec
	finalizeDuration prometheus.Histogram
	finalizedTaps    prometheus.Counter
	replayDrift      prometheus.Counter
	pollerTicks      *prometheus.CounterVec
	pollerDuration   prometheus.Histogram
	publishAttempts  *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	connections      prometheus.Gauge
}

// NewPrometheus registers every collector on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "taps_total",
			Help:      "Tap submissions by outcome.",
		}, []string{"result"}),
		tapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gooseclicker",
			Name:      "tap_duration_seconds",
			Help:      "Time to commit a tap, including the store round trip.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 3},
		}),
		finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "round_finalizations_total",
			Help:      "Finalization attempts by outcome.",
		}, []string{"result"}),
		finalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gooseclicker",
			Name:      "round_finalization_duration_seconds",
			Help:      "Time spent collapsing a round's ledger.",
			Buckets:   prometheus.DefBuckets,
		}),
		finalizedTaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "finalized_taps_total",
			Help:      "Ledger rows collapsed into player stats.",
		}),
		replayDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "replay_drift_taps_total",
			Help:      "Taps whose live points differed from the finalization replay.",
		}),
		pollerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "poller_ticks_total",
			Help:      "Round status poller ticks by outcome.",
		}, []string{"result"}),
		pollerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gooseclicker",
			Name:      "poller_tick_duration_seconds",
			Help:      "Duration of one advanceStatuses pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "event_publish_attempts_total",
			Help:      "Event notifier publish attempts.",
		}, []string{"event_type", "attempt", "result"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gooseclicker",
			Name:      "events_dropped_total",
			Help:      "Events dropped after exhausting retries or queue space.",
		}, []string{"event_type"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gooseclicker",
			Name:      "websocket_connections",
			Help:      "Open websocket connections on this instance.",
		}),
	}

	reg.MustRegister(
		m.taps, m.tapDuration,
		m.finalizations, m.finalizeDuration, m.finalizedTaps, m.replayDrift,
		m.pollerTicks, m.pollerDuration,
		m.publishAttempts, m.eventsDropped,
		m.connections,
	)
	return m
}

func (m *Prometheus) RecordTap(result string, duration time.Duration) {
	m.taps.WithLabelValues(result).Inc()
	m.tapDuration.Observe(duration.Seconds())
}

func (m *Prometheus) RecordFinalization(result string, duration time.Duration, taps int64) {
	m.finalizations.WithLabelValues(result).Inc()
	m.finalizeDuration.Observe(duration.Seconds())
	m.finalizedTaps.Add(float64(taps))
}

func (m *Prometheus) RecordReplayDrift(taps int) {
	m.replayDrift.Add(float64(taps))
}

func (m *Prometheus) RecordPollerTick(success bool, duration time.Duration) {
	m.pollerTicks.WithLabelValues(status(success)).Inc()
	m.pollerDuration.Observe(duration.Seconds())
}

func (m *Prometheus) RecordPublishAttempt(eventType string, attempt int, success bool) {
	m.publishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), status(success)).Inc()
}

func (m *Prometheus) RecordEventDropped(eventType string) {
	m.eventsDropped.WithLabelValues(eventType).Inc()
}

func (m *Prometheus) SetConnections(n int) {
	m.connections.Set(float64(n))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
