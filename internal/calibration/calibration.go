// Package calibration builds the slot registry from a reference image
// of a fully occupied lot. Each detected vehicle becomes one slot; the
// vehicle's bounding box is kept as the slot geometry.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"

	"github.com/smartpark-vision/parking-monitor/internal/detector"
	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/registry"
	"github.com/smartpark-vision/parking-monitor/internal/store"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// ErrNoVehicles is returned when the reference image yields no vehicle
// detections to calibrate from.
var ErrNoVehicles = errors.New("no vehicles detected in reference image")

// SlotsFromDetections turns filtered vehicle detections into slot
// records. Detections are ordered top to bottom, then left to right,
// so slot numbers stay stable across re-runs on the same image;
// numbering is 1-based and contiguous.
func SlotsFromDetections(dets []types.Detection) []registry.Record {
	sorted := make([]types.Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rect.Y1 != sorted[j].Rect.Y1 {
			return sorted[i].Rect.Y1 < sorted[j].Rect.Y1
		}
		return sorted[i].Rect.X1 < sorted[j].Rect.X1
	})

	records := make([]registry.Record, len(sorted))
	for i, d := range sorted {
		records[i] = registry.Record{
			X1:    d.Rect.X1,
			Y1:    d.Rect.Y1,
			X2:    d.Rect.X2,
			Y2:    d.Rect.Y2,
			Slot:  i + 1,
			Score: d.Confidence,
		}
	}
	return records
}

// Seed writes the initial backend rows for a calibration: one free
// slot row per record plus the area's declared slot count. Re-running
// calibration rewrites the same rows, so seeding is idempotent.
func Seed(ctx context.Context, st store.Store, areaID string, records []registry.Record, at time.Time) error {
	for _, rec := range records {
		if err := st.UpsertSlotStatus(ctx, areaID, rec.Slot, types.StatusFree, at); err != nil {
			return fmt.Errorf("seed slot %d: %w", rec.Slot, err)
		}
	}
	if err := st.SetAreaTotalSlots(ctx, areaID, len(records)); err != nil {
		return fmt.Errorf("set total slots: %w", err)
	}
	logger.Info("Calibration", "seeded %d free slots for area %s", len(records), areaID)
	return nil
}

// Options configures one calibration run.
type Options struct {
	ImagePath     string
	RegistryPath  string
	AnnotatedPath string // empty disables the annotated output image
	Detector      detector.Config
}

// Run detects vehicles in the reference image, writes the slot
// registry, seeds the backend, and optionally writes an annotated copy
// of the image. It returns the records it wrote.
func Run(ctx context.Context, st store.Store, areaID string, opts Options) ([]registry.Record, error) {
	img := gocv.IMRead(opts.ImagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("read reference image %s", opts.ImagePath)
	}
	defer img.Close()

	det, err := detector.NewYOLO(opts.Detector)
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}
	defer det.Close()

	dets, err := det.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detect vehicles: %w", err)
	}
	vehicles := detector.Filter(dets, opts.Detector.VehicleClasses, opts.Detector.ConfidenceFloor)
	if len(vehicles) == 0 {
		return nil, ErrNoVehicles
	}
	logger.Info("Calibration", "%d vehicles detected in %s", len(vehicles), opts.ImagePath)

	records := SlotsFromDetections(vehicles)
	if err := registry.Save(opts.RegistryPath, records); err != nil {
		return nil, err
	}
	if err := Seed(ctx, st, areaID, records, time.Now()); err != nil {
		return nil, err
	}

	if opts.AnnotatedPath != "" {
		annotate(&img, records)
		if ok := gocv.IMWrite(opts.AnnotatedPath, img); !ok {
			logger.Warn("Calibration", "could not write annotated image %s", opts.AnnotatedPath)
		} else {
			logger.Info("Calibration", "annotated image written to %s", opts.AnnotatedPath)
		}
	}

	return records, nil
}

// annotate draws each calibrated slot with its number onto the image.
func annotate(img *gocv.Mat, records []registry.Record) {
	for _, rec := range records {
		r := image.Rect(int(rec.X1), int(rec.Y1), int(rec.X2), int(rec.Y2))
		gocv.Rectangle(img, r, colornames.Lime, 2)
		gocv.PutText(img, fmt.Sprintf("Slot %d", rec.Slot),
			image.Pt(int(rec.X1), int(rec.Y1)-5),
			gocv.FontHersheySimplex, 0.5, colornames.Lime, 2)
	}
}
