package detector

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/smartpark-vision/parking-monitor/pkg/geometry"
	"github.com/smartpark-vision/parking-monitor/pkg/types"
)

const (
	yoloInputSize = 416
	nmsThreshold  = 0.4
)

// YOLO runs a darknet-family network through the OpenCV DNN module on
// the CPU. Instances are not safe for concurrent use; the monitor loop
// is the only caller.
type YOLO struct {
	net      gocv.Net
	outNames []string
	cfg      Config
}

// NewYOLO loads the network named by cfg. Both the weights and the
// network description must exist; a load failure is fatal to startup.
func NewYOLO(cfg Config) (*YOLO, error) {
	if cfg.ModelPath == "" || cfg.ConfigPath == "" {
		return nil, fmt.Errorf("detector model and config paths are required")
	}
	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("load detector model %s: network is empty", cfg.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return nil, fmt.Errorf("configure detector backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return nil, fmt.Errorf("configure detector target: %w", err)
	}

	return &YOLO{
		net:      net,
		outNames: outputLayerNames(&net),
		cfg:      cfg,
	}, nil
}

func outputLayerNames(net *gocv.Net) []string {
	var names []string
	layerNames := net.GetLayerNames()
	for _, idx := range net.GetUnconnectedOutLayers() {
		// OpenCV layer ids are 1-based.
		if idx > 0 && idx <= len(layerNames) {
			names = append(names, layerNames[idx-1])
		}
	}
	return names
}

// Detect runs one inference pass. Output rows are the darknet layout:
// cx, cy, w, h (normalized), objectness, then per-class scores. Boxes
// are returned in frame pixel coordinates after non-maximum
// suppression; class filtering is left to Filter.
func (y *YOLO) Detect(frame gocv.Mat) ([]types.Detection, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("detect: empty frame")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(yoloInputSize, yoloInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")
	outputs := y.net.ForwardLayers(y.outNames)
	defer func() {
		for _, o := range outputs {
			o.Close()
		}
	}()

	frameW := float32(frame.Cols())
	frameH := float32(frame.Rows())

	var (
		boxes    []image.Rectangle
		scores   []float32
		classIDs []int
	)
	for _, out := range outputs {
		cols := out.Cols()
		for row := 0; row < out.Rows(); row++ {
			classID, score := bestClass(out, row, cols)
			if float64(score) <= y.cfg.ConfidenceFloor {
				continue
			}
			cx := out.GetFloatAt(row, 0) * frameW
			cy := out.GetFloatAt(row, 1) * frameH
			w := out.GetFloatAt(row, 2) * frameW
			h := out.GetFloatAt(row, 3) * frameH
			boxes = append(boxes, image.Rect(
				int(cx-w/2), int(cy-h/2),
				int(cx+w/2), int(cy+h/2),
			))
			scores = append(scores, score)
			classIDs = append(classIDs, classID)
		}
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	indices := gocv.NMSBoxes(boxes, scores, float32(y.cfg.ConfidenceFloor), nmsThreshold)
	dets := make([]types.Detection, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(boxes) {
			continue
		}
		b := boxes[i]
		dets = append(dets, types.Detection{
			Rect:       geometry.NewRect(float64(b.Min.X), float64(b.Min.Y), float64(b.Max.X), float64(b.Max.Y)),
			ClassID:    classIDs[i],
			Confidence: float64(scores[i]),
		})
	}
	return dets, nil
}

// bestClass returns the highest scoring class for one output row.
func bestClass(out gocv.Mat, row, cols int) (int, float32) {
	bestID := -1
	var best float32
	for c := 5; c < cols; c++ {
		if s := out.GetFloatAt(row, c); s > best {
			best = s
			bestID = c - 5
		}
	}
	return bestID, best
}

// Close releases the network.
func (y *YOLO) Close() error {
	return y.net.Close()
}
