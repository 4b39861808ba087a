// Package detector wraps the pre-trained vehicle detector behind a
// small interface so the occupancy logic never touches the DNN stack.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Detector turns a frame into a list of detections. Implementations
// make no ordering guarantee on the returned list.
type Detector interface {
	// Detect analyzes a single frame. An empty slice means nothing
	// was found; that is not an error.
	Detect(frame gocv.Mat) ([]types.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	// ModelPath is the network weights file.
	ModelPath string

	// ConfigPath is the network description file.
	ConfigPath string

	// ConfidenceFloor is the minimum detection confidence (0.0-1.0).
	ConfidenceFloor float64

	// VehicleClasses is the class allow-list applied by Filter.
	VehicleClasses []int
}

// DefaultConfig returns a Config with the deployed default values.
func DefaultConfig() Config {
	return Config{
		ModelPath:       "yolov3-tiny.weights",
		ConfigPath:      "yolov3-tiny.cfg",
		ConfidenceFloor: 0.3,
		VehicleClasses:  []int{2, 5, 7},
	}
}

// Filter keeps detections whose class is in the allow-list and whose
// confidence is strictly above the floor. It is applied between raw
// detector output and the occupancy pass.
func Filter(dets []types.Detection, classes []int, floor float64) []types.Detection {
	allowed := make(map[int]bool, len(classes))
	for _, c := range classes {
		allowed[c] = true
	}

	out := make([]types.Detection, 0, len(dets))
	for _, d := range dets {
		if !allowed[d.ClassID] {
			continue
		}
		if d.Confidence <= floor {
			continue
		}
		out = append(out, d)
	}
	return out
}
