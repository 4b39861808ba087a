// Package store talks to the SmartPark backend tables.
//
// The backend exposes three tables: parking_areas (one row per lot),
// slots (keyed by parking_area_id + slot_number), and system_status
// (one liveness row per monitor instance). All writes are idempotent
// upserts or keyed updates; the monitor never reads its own writes
// back.
package store

import (
	"context"
	"time"

	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Store is the capability handle for the backend. Constructors own the
// authenticated session; the loop components receive the interface.
type Store interface {
	// ListAreas returns every parking area known to the backend.
	ListAreas(ctx context.Context) ([]types.ParkingArea, error)

	// SetAreaTotalSlots updates the declared slot count of an area.
	SetAreaTotalSlots(ctx context.Context, areaID string, total int) error

	// UpsertSlotStatus writes the status of one slot, keyed by
	// (parking_area_id, slot_number). Retrying a successful write
	// leaves the row unchanged.
	UpsertSlotStatus(ctx context.Context, areaID string, slotNumber int, status types.SlotStatus, updatedAt time.Time) error

	// SetSystemOnline inserts or refreshes the liveness row for
	// systemID with status online and a fresh heartbeat timestamp.
	SetSystemOnline(ctx context.Context, systemID, location string, at time.Time) error

	// SetSystemOffline flips the liveness row to offline without
	// touching last_heartbeat, preserving the last-seen time.
	SetSystemOffline(ctx context.Context, systemID string) error
}
