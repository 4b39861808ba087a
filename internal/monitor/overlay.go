package monitor

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"

	"github.com/smartpark-vision/parking-monitor/internal/occupancy"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

// drawOverlay draws the slot rectangles colored by confirmed state,
// per-slot labels, and the availability banner onto the frame.
func drawOverlay(frame *gocv.Mat, slots []types.Slot, states *occupancy.StateMap) {
	occupied := 0
	for _, s := range slots {
		c := colornames.Lime
		if states.Get(s.Index) == types.StateOccupied {
			c = colornames.Red
			occupied++
		}
		r := image.Rect(int(s.Rect.X1), int(s.Rect.Y1), int(s.Rect.X2), int(s.Rect.Y2))
		gocv.Rectangle(frame, r, c, 2)
		gocv.PutText(frame, fmt.Sprintf("Slot %d", s.Number),
			image.Pt(int(s.Rect.X1), int(s.Rect.Y1)-5),
			gocv.FontHersheySimplex, 0.5, c, 2)
	}

	banner := fmt.Sprintf("Available: %d | Occupied: %d", len(slots)-occupied, occupied)
	gocv.PutText(frame, banner, image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.7, colornames.White, 2)
}
