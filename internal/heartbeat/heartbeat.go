// Package heartbeat maintains the monitor liveness record in the
// backend, independent of detection activity.
package heartbeat

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/metrics"
	"github.com/smartpark-vision/parking-monitor/internal/store"
)

// Reporter writes online heartbeats on its own wall-clock interval and
// an offline marker at shutdown. It is driven by the monitor loop
// calling TickDue each iteration; the interval is measured from the
// last successful write, not from frame counts.
type Reporter struct {
	store    store.Store
	systemID string
	location string
	interval time.Duration
	clk      clock.Clock
	metrics  *metrics.Metrics

	last time.Time
}

// New creates a Reporter. Nothing is written until Start.
func New(st store.Store, systemID, location string, interval time.Duration, clk clock.Clock, m *metrics.Metrics) *Reporter {
	return &Reporter{
		store:    st,
		systemID: systemID,
		location: location,
		interval: interval,
		clk:      clk,
		metrics:  m,
	}
}

// Start writes the initial online record unconditionally. A failure is
// logged, not fatal; the next TickDue retries.
func (r *Reporter) Start(ctx context.Context) {
	r.beat(ctx)
}

// TickDue re-writes the online record if the heartbeat interval has
// elapsed since the last successful write.
func (r *Reporter) TickDue(ctx context.Context) {
	if r.clk.Since(r.last) < r.interval {
		return
	}
	r.beat(ctx)
}

func (r *Reporter) beat(ctx context.Context) {
	now := r.clk.Now()
	if err := r.store.SetSystemOnline(ctx, r.systemID, r.location, now); err != nil {
		r.metrics.HeartbeatFailures.Add(1)
		logger.Warn("Heartbeat", "online write failed: %v", err)
		return
	}
	r.last = now
	r.metrics.HeartbeatsSent.Add(1)
	logger.Debug("Heartbeat", "%s online at %s", r.systemID, now.UTC().Format(time.RFC3339))
}

// Shutdown marks the monitor offline. Best-effort: a failure is logged
// and swallowed so liveness reporting never blocks process exit. The
// offline write deliberately leaves last_heartbeat untouched.
func (r *Reporter) Shutdown(ctx context.Context) {
	if err := r.store.SetSystemOffline(ctx, r.systemID); err != nil {
		logger.Error("Heartbeat", "offline write failed: %v", err)
		return
	}
	logger.Info("Heartbeat", "%s marked offline", r.systemID)
}
