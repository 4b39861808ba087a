package statusapi

import (
	"sync"
	"time"
)

// SlotInfo is the occupancy of one slot as served by /api/slots.
type SlotInfo struct {
	Number int    `json:"slot_number"`
	State  string `json:"state"`
}

// Stats is the loop snapshot served by /api/stats.
type Stats struct {
	FramesRead      uint64 `json:"frames_read"`
	FramesProcessed uint64 `json:"frames_processed"`
	PendingUpdates  int    `json:"pending_updates"`
	Occupied        int    `json:"occupied"`
	Available       int    `json:"available"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Holder is the hand-off point between the monitor loop and the HTTP
// server. The loop publishes immutable snapshots; handlers only read.
type Holder struct {
	mu    sync.Mutex
	frame []byte
	slots []SlotInfo
	stats Stats
}

// NewHolder returns an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// SetFrame stores the latest annotated JPEG. The caller must not
// retain data after the call.
func (h *Holder) SetFrame(data []byte) {
	h.mu.Lock()
	h.frame = data
	h.mu.Unlock()
}

// Frame returns the latest annotated JPEG, or nil before the first
// processed frame.
func (h *Holder) Frame() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// SetSlots stores the latest slot snapshot.
func (h *Holder) SetSlots(slots []SlotInfo) {
	h.mu.Lock()
	h.slots = slots
	h.mu.Unlock()
}

// Slots returns the latest slot snapshot.
func (h *Holder) Slots() []SlotInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.slots
}

// SetStats stores the latest loop stats, stamping them.
func (h *Holder) SetStats(s Stats) {
	s.UpdatedAt = time.Now().Unix()
	h.mu.Lock()
	h.stats = s
	h.mu.Unlock()
}

// Stats returns the latest loop stats.
func (h *Holder) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
