// Package types holds the records shared between the monitor, the
// calibration tool, and the backend client.
package types

import (
	"time"

	"github.com/smartpark-vision/parking-monitor/pkg/geometry"
)

// SlotState is the monitor-side occupancy state of a parking slot.
type SlotState string

const (
	// StateUnknown is the pre-first-evaluation sentinel. Once the
	// occupancy pass has run, every slot is either available or
	// occupied.
	StateUnknown   SlotState = "unknown"
	StateAvailable SlotState = "available"
	StateOccupied  SlotState = "occupied"
)

// SlotStatus is the backend representation stored in the slots table.
type SlotStatus string

const (
	StatusFree     SlotStatus = "free"
	StatusOccupied SlotStatus = "occupied"
	StatusReserved SlotStatus = "reserved"
)

// DBStatus maps a monitor state to the slots.status column value.
func (s SlotState) DBStatus() SlotStatus {
	if s == StateOccupied {
		return StatusOccupied
	}
	return StatusFree
}

// Slot is one monitored parking space. The registry assigns Index at
// load time; Number is the 1-based slot_number the backend uses.
type Slot struct {
	Index  int
	Number int
	Rect   geometry.Rect
}

// Detection is a single detector hit on a processed frame. Detections
// are ephemeral and discarded after the frame's occupancy pass.
type Detection struct {
	Rect       geometry.Rect
	ClassID    int
	Confidence float64
}

// PendingUpdate is a slot state change waiting to be flushed to the
// backend. The batcher keeps at most one per slot; a newer change for
// the same slot supersedes the older one.
type PendingUpdate struct {
	SlotIndex  int
	SlotNumber int
	AreaID     string
	NewState   SlotState
	ObservedAt time.Time
}

// ParkingArea mirrors one row of the parking_areas table.
type ParkingArea struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TotalSlots int     `json:"total_slots"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Password   string  `json:"password"`
}
