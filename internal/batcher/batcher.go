// Package batcher coalesces slot state changes and flushes them to the
// backend at a bounded rate.
package batcher

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/metrics"
	"github.com/smartpark-vision/parking-monitor/internal/occupancy"
	"github.com/smartpark-vision/parking-monitor/internal/store"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Batcher holds at most one PendingUpdate per slot and writes them out
// in flush windows no closer together than the configured interval.
// A pending update is never discarded: it is either flushed or
// superseded by a newer derived state for the same slot.
//
// The batcher owns the confirmed-state write: a slot's StateMap entry
// advances only after its upsert succeeds, so a failed flush leaves
// prior state intact and the slot is re-evaluated next frame.
type Batcher struct {
	store    store.Store
	states   *occupancy.StateMap
	interval time.Duration
	clk      clock.Clock
	metrics  *metrics.Metrics

	pending   map[int]types.PendingUpdate
	lastFlush time.Time
}

// New creates a Batcher. The zero lastFlush makes the first due flush
// immediate.
func New(st store.Store, states *occupancy.StateMap, interval time.Duration, clk clock.Clock, m *metrics.Metrics) *Batcher {
	return &Batcher{
		store:    st,
		states:   states,
		interval: interval,
		clk:      clk,
		metrics:  m,
		pending:  make(map[int]types.PendingUpdate),
	}
}

// Enqueue adds updates to the pending set. A newer update for a slot
// overwrites the older one (last write wins per slot).
func (b *Batcher) Enqueue(updates []types.PendingUpdate) {
	for _, u := range updates {
		b.pending[u.SlotIndex] = u
	}
	b.metrics.UpdatesPending.Store(uint64(len(b.pending)))
}

// PendingCount returns the size of the pending set.
func (b *Batcher) PendingCount() int {
	return len(b.pending)
}

// FlushDue writes all pending updates if any exist and the flush
// interval has elapsed since the last attempt. Failed upserts stay
// pending and are retried in the next window; failures are logged,
// never fatal. Returns the number of updates confirmed.
func (b *Batcher) FlushDue(ctx context.Context) int {
	if len(b.pending) == 0 {
		return 0
	}
	if b.clk.Since(b.lastFlush) < b.interval {
		return 0
	}
	// The window is consumed by the attempt, not by success, so a
	// failing backend is retried once per interval rather than every
	// frame.
	b.lastFlush = b.clk.Now()

	flushed := 0
	for index, upd := range b.pending {
		if ctx.Err() != nil {
			break
		}
		err := b.store.UpsertSlotStatus(ctx, upd.AreaID, upd.SlotNumber, upd.NewState.DBStatus(), upd.ObservedAt)
		if err != nil {
			b.metrics.UpdateFailures.Add(1)
			logger.Warn("Batcher", "slot %d upsert failed, will retry: %v", upd.SlotNumber, err)
			continue
		}
		b.states.Set(index, upd.NewState)
		delete(b.pending, index)
		flushed++
		logger.Debug("Batcher", "slot %d = %s", upd.SlotNumber, upd.NewState.DBStatus())
	}

	if flushed > 0 {
		b.metrics.UpdatesFlushed.Add(uint64(flushed))
		logger.Info("Batcher", "flushed %d slot updates (%d still pending)", flushed, len(b.pending))
	}
	b.metrics.UpdatesPending.Store(uint64(len(b.pending)))
	return flushed
}
