// Package registry loads and persists the calibrated slot geometry.
//
// The registry file is an ordered JSON list of slot records written
// once by the calibration tool and read once at monitor startup. Its
// absence is a fatal startup condition: the monitor must not run with
// zero slots.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smartpark-vision/parking-monitor/pkg/geometry"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// Record is the on-disk shape of one calibrated slot.
type Record struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Slot  int     `json:"slot"`
	Score float64 `json:"score,omitempty"`
}

// Load reads the slot registry from path. File order defines the
// run-local slot index; the backend slot number comes from the record,
// falling back to position+1 for files written before numbering.
func Load(path string) ([]types.Slot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("slot registry %s not found (run calibrate first): %w", path, err)
		}
		return nil, fmt.Errorf("read slot registry %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse slot registry %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("slot registry %s contains no slots", path)
	}

	slots := make([]types.Slot, len(records))
	for i, rec := range records {
		number := rec.Slot
		if number <= 0 {
			number = i + 1
		}
		slots[i] = types.Slot{
			Index:  i,
			Number: number,
			Rect:   geometry.NewRect(rec.X1, rec.Y1, rec.X2, rec.Y2),
		}
	}
	return slots, nil
}

// Save writes the slot registry to path, replacing any previous file.
func Save(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slot registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write slot registry %s: %w", path, err)
	}
	return nil
}
