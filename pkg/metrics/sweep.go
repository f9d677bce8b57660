package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records metadata for grace-period sweeps.
type SweepMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	expired  prometheus.Counter
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sweep_duration_seconds",
		Help:    "Duration of expiration sweeps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sweep"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_success",
		Help: "Completed expiration sweeps.",
	}, []string{"sweep"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_failure",
		Help: "Expiration sweeps that aborted before processing candidates.",
	}, []string{"sweep"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_skipped",
		Help: "Sweep invocations skipped because a sweep was already running.",
	}, []string{"sweep"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservations_expired_total",
		Help: "Reservations transitioned to invalid by the sweeper.",
	})
	reg.MustRegister(duration, success, failure, skipped, expired)
	return &SweepMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		skipped:  skipped,
		expired:  expired,
	}
}

// ObserveDuration records the duration for the named sweep.
func (m *SweepMetrics) ObserveDuration(sweep string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(sweep)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named sweep.
func (m *SweepMetrics) IncSuccess(sweep string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(sweep)).Inc()
}

// IncFailure increments the failure counter for the named sweep.
func (m *SweepMetrics) IncFailure(sweep string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(sweep)).Inc()
}

// IncSkipped increments the overlap-skip counter for the named sweep.
func (m *SweepMetrics) IncSkipped(sweep string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(sweep)).Inc()
}

// AddExpired counts reservations expired during a sweep.
func (m *SweepMetrics) AddExpired(count int) {
	if m == nil || m.expired == nil || count <= 0 {
		return
	}
	m.expired.Add(float64(count))
}

func normalizeLabel(sweep string) string {
	if sweep == "" {
		return "unknown"
	}
	return sweep
}
