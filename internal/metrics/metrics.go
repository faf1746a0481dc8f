package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leasehub/exposure-rotation/internal/domain"
	"github.com/leasehub/exposure-rotation/internal/rotation"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	RotationsQueued    *prometheus.CounterVec
	RotationsDropped   *prometheus.CounterVec
	RotationsCompleted *prometheus.CounterVec
	RotationFailures   *prometheus.CounterVec
	RotatedItems       *prometheus.CounterVec
	RotationLatency    *prometheus.HistogramVec
	CounterFallbacks   *prometheus.CounterVec
	CooldownFallbacks  *prometheus.CounterVec
	CompactionItems    *prometheus.GaugeVec
	CompactionFailures *prometheus.CounterVec
	CompactionDuration *prometheus.HistogramVec
	reg                prometheus.Registerer
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	queueLabel := []string{"queue"}

	m := &Metrics{
		RotationsQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_rotations_queued_total",
			Help: "Tail-moves handed to the rotation workers.",
		}, queueLabel),

		RotationsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_rotations_dropped_total",
			Help: "Tail-moves dropped because the task buffer was full.",
		}, queueLabel),

		RotationsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_rotations_completed_total",
			Help: "Tail-moves committed by the rotation workers.",
		}, queueLabel),

		RotationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_rotation_failures_total",
			Help: "Tail-moves that failed and were left for compaction.",
		}, queueLabel),

		RotatedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_rotated_items_total",
			Help: "Listings moved to the tail of their queue.",
		}, queueLabel),

		RotationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exposure_rotation_seconds",
			Help:    "Time from enqueueing a tail-move to its commit.",
			Buckets: prometheus.DefBuckets,
		}, queueLabel),

		CounterFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_counter_fallbacks_total",
			Help: "Panel reads that served group 0 because the rotation counter was unavailable.",
		}, queueLabel),

		CooldownFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_cooldown_fallbacks_total",
			Help: "Feed reads that rotated because the cooldown store was unavailable.",
		}, queueLabel),

		CompactionItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "exposure_compaction_renumbered",
			Help: "Listings renumbered by the last successful compaction of each queue.",
		}, queueLabel),

		CompactionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exposure_compaction_failures_total",
			Help: "Queue compactions that failed and will be retried on the next run.",
		}, queueLabel),

		CompactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exposure_compaction_seconds",
			Help:    "Duration of a single queue compaction.",
			Buckets: prometheus.DefBuckets,
		}, queueLabel),

		reg: reg,
	}

	reg.MustRegister(
		m.RotationsQueued,
		m.RotationsDropped,
		m.RotationsCompleted,
		m.RotationFailures,
		m.RotatedItems,
		m.RotationLatency,
		m.CounterFallbacks,
		m.CooldownFallbacks,
		m.CompactionItems,
		m.CompactionFailures,
		m.CompactionDuration,
	)

	return m
}

// TrackBufferDepth exposes the rotation task buffer depth as a gauge that is
// sampled on every scrape.
func (m *Metrics) TrackBufferDepth(depth func() int) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "exposure_rotation_buffer_depth",
		Help: "Tail-moves waiting for a rotation worker.",
	}, func() float64 { return float64(depth()) }))
}

// RotationHooks returns the callbacks expected by the rotation package.
func (m *Metrics) RotationHooks() rotation.Hooks {
	return rotation.Hooks{
		OnCounterFallback: func(q domain.QueueType) {
			m.CounterFallbacks.WithLabelValues(string(q)).Inc()
		},
		OnCooldownFallback: func(q domain.QueueType) {
			m.CooldownFallbacks.WithLabelValues(string(q)).Inc()
		},
		OnRotationQueued: func(q domain.QueueType) {
			m.RotationsQueued.WithLabelValues(string(q)).Inc()
		},
		OnRotationDropped: func(q domain.QueueType) {
			m.RotationsDropped.WithLabelValues(string(q)).Inc()
		},
		OnRenumbered: func(q domain.QueueType, n int, elapsed time.Duration) {
			m.CompactionItems.WithLabelValues(string(q)).Set(float64(n))
			m.CompactionDuration.WithLabelValues(string(q)).Observe(elapsed.Seconds())
		},
		OnCompactionFailed: func(q domain.QueueType) {
			m.CompactionFailures.WithLabelValues(string(q)).Inc()
		},
	}
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so worker.go stays import-free.
func (m *Metrics) WorkerHooks() (
	onMoved func(domain.QueueType, int, time.Duration),
	onFailed func(domain.QueueType),
) {
	onMoved = func(q domain.QueueType, moved int, latency time.Duration) {
		m.RotationsCompleted.WithLabelValues(string(q)).Inc()
		m.RotatedItems.WithLabelValues(string(q)).Add(float64(moved))
		m.RotationLatency.WithLabelValues(string(q)).Observe(latency.Seconds())
	}
	onFailed = func(q domain.QueueType) {
		m.RotationFailures.WithLabelValues(string(q)).Inc()
	}
	return
}
