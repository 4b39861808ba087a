// Package metrics exposes monitor counters through Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all monitor metrics. Counters are plain atomics updated
// from the loop; Prometheus reads them lazily through GaugeFunc.
type Metrics struct {
	// Frame pipeline
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesSkipped   atomic.Uint64

	// Detector
	DetectErrors    atomic.Uint64
	DetectLatencyMs atomic.Uint64

	// Batched backend writes
	UpdatesFlushed atomic.Uint64
	UpdateFailures atomic.Uint64
	UpdatesPending atomic.Uint64

	// Liveness
	HeartbeatsSent    atomic.Uint64
	HeartbeatFailures atomic.Uint64

	// Occupancy snapshot
	SlotsOccupied  atomic.Uint64
	SlotsAvailable atomic.Uint64

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauges := []struct {
		name string
		help string
		load func() uint64
	}{
		{"parking_frames_read_total", "Total frames read from the video source", m.FramesRead.Load},
		{"parking_frames_processed_total", "Total frames run through the detector", m.FramesProcessed.Load},
		{"parking_frames_skipped_total", "Total frames skipped by the sampler", m.FramesSkipped.Load},
		{"parking_detect_errors_total", "Total detector failures", m.DetectErrors.Load},
		{"parking_detect_latency_ms", "Last detector inference latency in milliseconds", m.DetectLatencyMs.Load},
		{"parking_updates_flushed_total", "Total slot updates written to the backend", m.UpdatesFlushed.Load},
		{"parking_update_failures_total", "Total slot update write failures", m.UpdateFailures.Load},
		{"parking_updates_pending", "Slot updates waiting for the next flush window", m.UpdatesPending.Load},
		{"parking_heartbeats_sent_total", "Total liveness heartbeats written", m.HeartbeatsSent.Load},
		{"parking_heartbeat_failures_total", "Total liveness heartbeat write failures", m.HeartbeatFailures.Load},
		{"parking_slots_occupied", "Slots currently believed occupied", m.SlotsOccupied.Load},
		{"parking_slots_available", "Slots currently believed available", m.SlotsAvailable.Load},
	}

	for _, g := range gauges {
		load := g.load
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return float64(load()) },
		))
	}
}

// UpdateDetectLatency records the latency of the last inference pass.
func (m *Metrics) UpdateDetectLatency(d time.Duration) {
	m.DetectLatencyMs.Store(uint64(d.Milliseconds()))
}

// UpdateOccupancy records the current slot state counts.
func (m *Metrics) UpdateOccupancy(occupied, available int) {
	m.SlotsOccupied.Store(uint64(occupied))
	m.SlotsAvailable.Store(uint64(available))
}

// Handler returns the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server. It blocks, so run it on
// its own goroutine.
func (m *Metrics) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
