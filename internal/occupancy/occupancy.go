// Package occupancy derives per-slot occupancy from detector output.
package occupancy

import (
	"time"

	"github.com/smartpark-vision/parking-monitor/pkg/geometry"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// StateMap holds the confirmed occupancy state of every slot. It is
// owned by the single monitor loop goroutine; the state for a slot
// advances only when the batcher confirms the corresponding backend
// write, never speculatively.
type StateMap struct {
	states map[int]types.SlotState
}

// NewStateMap initializes every slot to unknown.
func NewStateMap(slots []types.Slot) *StateMap {
	m := &StateMap{states: make(map[int]types.SlotState, len(slots))}
	for _, s := range slots {
		m.states[s.Index] = types.StateUnknown
	}
	return m
}

// Get returns the confirmed state for a slot index.
func (m *StateMap) Get(index int) types.SlotState {
	if s, ok := m.states[index]; ok {
		return s
	}
	return types.StateUnknown
}

// Set records a confirmed state for a slot index.
func (m *StateMap) Set(index int, state types.SlotState) {
	m.states[index] = state
}

// Counts returns how many slots are confirmed occupied and how many
// are not (available and unknown both count as not occupied).
func (m *StateMap) Counts() (occupied, available int) {
	for _, s := range m.states {
		if s == types.StateOccupied {
			occupied++
		} else {
			available++
		}
	}
	return occupied, available
}

// Snapshot returns a copy of the state mapping for readers outside the
// loop goroutine.
func (m *StateMap) Snapshot() map[int]types.SlotState {
	out := make(map[int]types.SlotState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out
}

// Evaluate runs one occupancy pass: each slot derives occupied if any
// detection overlaps it above the IoU threshold, otherwise available.
// Slots whose derived state differs from their confirmed state yield
// exactly one PendingUpdate; the state map itself is not written here.
//
// Detections must already be filtered by class and confidence. With no
// detections every slot derives available: unknown is unreachable once
// the first pass has run.
func Evaluate(slots []types.Slot, states *StateMap, detections []types.Detection, threshold float64, areaID string, now time.Time) []types.PendingUpdate {
	var updates []types.PendingUpdate
	for _, slot := range slots {
		derived := types.StateAvailable
		for _, det := range detections {
			if geometry.IoU(slot.Rect, det.Rect) > threshold {
				derived = types.StateOccupied
				break
			}
		}
		if states.Get(slot.Index) == derived {
			continue
		}
		updates = append(updates, types.PendingUpdate{
			SlotIndex:  slot.Index,
			SlotNumber: slot.Number,
			AreaID:     areaID,
			NewState:   derived,
			ObservedAt: now,
		})
	}
	return updates
}
