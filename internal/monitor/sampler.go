package monitor

// ShouldProcess reports whether the frame at this counter position goes
// through the detector. Every skip-th frame is processed, starting with
// frame 0; the rest are display-only. This is the throughput/latency
// knob: skip 3 means one inference per three frames read.
func ShouldProcess(counter uint64, skip int) bool {
	if skip <= 1 {
		return true
	}
	return counter%uint64(skip) == 0
}
