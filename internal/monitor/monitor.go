// Package monitor runs the slot-occupancy decision loop: it samples
// frames from the video source, derives per-slot occupancy from
// detector output, and hands state changes to the batcher.
package monitor

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"gocv.io/x/gocv"

	"github.com/smartpark-vision/parking-monitor/internal/batcher"
	"github.com/smartpark-vision/parking-monitor/internal/detector"
	"github.com/smartpark-vision/parking-monitor/internal/heartbeat"
	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/metrics"
	"github.com/smartpark-vision/parking-monitor/internal/occupancy"
	"github.com/smartpark-vision/parking-monitor/internal/statusapi"
	"github.com/smartpark-vision/parking-monitor/internal/video"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Config carries the per-run parameters of the loop. The capped and
// uncapped runs are the same loop; MaxFrames is the only difference.
type Config struct {
	AreaID          string
	IoUThreshold    float64
	FrameSkip       int
	ConfidenceFloor float64
	VehicleClasses  []int

	// MaxFrames stops the run after this many frames are read.
	// 0 means run until cancelled, rewinding at end of stream.
	MaxFrames uint64

	// Display shows the annotated frames in a window; 'q' quits.
	Display bool
}

// Monitor owns the loop. All mutable decision state (the state map,
// the pending set, the flush and heartbeat timestamps) is touched only
// from Run's goroutine; no locking is needed.
type Monitor struct {
	cfg       Config
	source    *video.Source
	det       detector.Detector
	slots     []types.Slot
	states    *occupancy.StateMap
	batcher   *batcher.Batcher
	heartbeat *heartbeat.Reporter
	metrics   *metrics.Metrics
	status    *statusapi.Holder // nil when the status server is disabled
	clk       clock.Clock
}

// New wires a Monitor from injected collaborators. The caller owns the
// source, detector, and store lifetimes.
func New(cfg Config, source *video.Source, det detector.Detector, slots []types.Slot,
	states *occupancy.StateMap, b *batcher.Batcher, hb *heartbeat.Reporter,
	m *metrics.Metrics, status *statusapi.Holder, clk clock.Clock) *Monitor {
	return &Monitor{
		cfg:       cfg,
		source:    source,
		det:       det,
		slots:     slots,
		states:    states,
		batcher:   b,
		heartbeat: hb,
		metrics:   m,
		status:    status,
		clk:       clk,
	}
}

// Run drives the loop until the context is cancelled, the operator
// quits the display window, or the frame limit is reached. Every exit
// funnels through the deferred offline write, so liveness shutdown is
// one code path regardless of what stopped the loop.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.heartbeat.Shutdown(context.Background())

	m.heartbeat.Start(ctx)

	var window *gocv.Window
	if m.cfg.Display {
		window = gocv.NewWindow("Parking Monitor")
		defer window.Close()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	logger.Info("Monitor", "monitoring %d slots from %s (skip=%d, iou=%.2f)",
		len(m.slots), m.source.Path(), m.cfg.FrameSkip, m.cfg.IoUThreshold)

	var counter uint64
	for {
		if ctx.Err() != nil {
			logger.Info("Monitor", "stop requested")
			return nil
		}
		if m.cfg.MaxFrames > 0 && counter >= m.cfg.MaxFrames {
			logger.Info("Monitor", "frame limit %d reached", m.cfg.MaxFrames)
			return nil
		}

		if !m.source.Read(&frame) {
			if m.cfg.MaxFrames > 0 {
				// Capped runs treat end of stream as terminal.
				logger.Info("Monitor", "end of stream after %d frames", counter)
				return nil
			}
			m.source.Rewind()
			continue
		}
		m.metrics.FramesRead.Add(1)

		process := ShouldProcess(counter, m.cfg.FrameSkip)
		counter++
		if !process {
			// Skipped frames are display-only; they never reach the
			// detector or the occupancy pass.
			m.metrics.FramesSkipped.Add(1)
			if m.show(window, &frame) {
				return nil
			}
			continue
		}

		if err := m.processFrame(&frame); err != nil {
			m.metrics.DetectErrors.Add(1)
			logger.Warn("Monitor", "frame dropped: %v", err)
		}

		m.batcher.FlushDue(ctx)
		m.heartbeat.TickDue(ctx)

		if m.show(window, &frame) {
			return nil
		}
	}
}

func (m *Monitor) processFrame(frame *gocv.Mat) error {
	start := time.Now()
	dets, err := m.det.Detect(*frame)
	if err != nil {
		return err
	}
	m.metrics.UpdateDetectLatency(time.Since(start))
	m.metrics.FramesProcessed.Add(1)

	vehicles := detector.Filter(dets, m.cfg.VehicleClasses, m.cfg.ConfidenceFloor)
	updates := occupancy.Evaluate(m.slots, m.states, vehicles, m.cfg.IoUThreshold, m.cfg.AreaID, m.clk.Now())
	for _, u := range updates {
		logger.Info("Monitor", "slot %d -> %s", u.SlotNumber, u.NewState)
	}
	m.batcher.Enqueue(updates)

	occupied, available := m.states.Counts()
	m.metrics.UpdateOccupancy(occupied, available)

	drawOverlay(frame, m.slots, m.states)
	m.publish(frame, occupied, available)
	return nil
}

// publish hands the latest snapshot and annotated frame to the status
// server's holder.
func (m *Monitor) publish(frame *gocv.Mat, occupied, available int) {
	if m.status == nil {
		return
	}

	infos := make([]statusapi.SlotInfo, len(m.slots))
	for i, s := range m.slots {
		infos[i] = statusapi.SlotInfo{Number: s.Number, State: string(m.states.Get(s.Index))}
	}
	m.status.SetSlots(infos)
	m.status.SetStats(statusapi.Stats{
		FramesRead:      m.metrics.FramesRead.Load(),
		FramesProcessed: m.metrics.FramesProcessed.Load(),
		PendingUpdates:  m.batcher.PendingCount(),
		Occupied:        occupied,
		Available:       available,
	})

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		logger.Debug("Monitor", "preview encode failed: %v", err)
		return
	}
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	buf.Close()
	m.status.SetFrame(data)
}

// show displays the frame when the window is enabled. Returns true
// when the operator pressed 'q'.
func (m *Monitor) show(window *gocv.Window, frame *gocv.Mat) bool {
	if window == nil {
		return false
	}
	window.IMShow(*frame)
	return window.WaitKey(1) == 'q'
}
