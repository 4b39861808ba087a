package detector

import (
	"testing"

	"github.com/smartpark-vision/parking-monitor/pkg/geometry"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

func det(classID int, confidence float64) types.Detection {
	return types.Detection{
		Rect:       geometry.NewRect(0, 0, 10, 10),
		ClassID:    classID,
		Confidence: confidence,
	}
}

func TestFilterClassAllowList(t *testing.T) {
	// Five detections of classes outside {2, 5, 7} all drop.
	dets := []types.Detection{
		det(0, 0.9), det(1, 0.9), det(3, 0.9), det(9, 0.9), det(11, 0.9),
	}
	got := Filter(dets, []int{2, 5, 7}, 0.3)
	if len(got) != 0 {
		t.Fatalf("Filter kept %d detections of disallowed classes", len(got))
	}
}

func TestFilterConfidenceFloor(t *testing.T) {
	dets := []types.Detection{
		det(2, 0.29),
		det(2, 0.30), // at the floor: dropped, the comparison is strict
		det(2, 0.31),
	}
	got := Filter(dets, []int{2, 5, 7}, 0.3)
	if len(got) != 1 {
		t.Fatalf("Filter kept %d detections, want 1", len(got))
	}
	if got[0].Confidence != 0.31 {
		t.Errorf("kept confidence %v, want 0.31", got[0].Confidence)
	}
}

func TestFilterKeepsAllVehicleClasses(t *testing.T) {
	dets := []types.Detection{det(2, 0.5), det(5, 0.5), det(7, 0.5)}
	got := Filter(dets, []int{2, 5, 7}, 0.3)
	if len(got) != 3 {
		t.Fatalf("Filter kept %d detections, want 3", len(got))
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if got := Filter(nil, []int{2, 5, 7}, 0.3); len(got) != 0 {
		t.Fatalf("Filter(nil) = %v, want empty", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ConfidenceFloor != 0.3 {
		t.Errorf("ConfidenceFloor = %v, want 0.3", cfg.ConfidenceFloor)
	}
	if len(cfg.VehicleClasses) != 3 {
		t.Errorf("VehicleClasses = %v, want 3 entries", cfg.VehicleClasses)
	}
}
