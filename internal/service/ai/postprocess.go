package ai

import (
	"fmt"
	"sort"
	"strings"

	"ewastevision/internal/model"
)

// Format identifies the output head layout of an exported detection model.
type Format string

const (
	// FormatYOLOv8 output is [1, 4+nc, N]: cx, cy, w, h followed by per-class scores.
	FormatYOLOv8 Format = "yolov8"
	// FormatYOLOv5 output is [1, N, 5+nc]: cx, cy, w, h, objectness, per-class scores.
	FormatYOLOv5 Format = "yolov5"
)

// ParseFormat converts a config value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatYOLOv8, "":
		return FormatYOLOv8, nil
	case FormatYOLOv5:
		return FormatYOLOv5, nil
	default:
		return "", fmt.Errorf("unknown model format %q", s)
	}
}

// DecodeParams carries everything needed to turn a raw output tensor into detections.
type DecodeParams struct {
	ConfThreshold float64
	NMSThreshold  float64
	InputSize     int
	FrameWidth    int
	FrameHeight   int
	Labels        []string
}

type candidate struct {
	box     model.BBox
	score   float64
	classID int
}

// Decode converts a raw network output into detections in frame coordinates.
// Candidates below ConfThreshold are dropped and per-class NMS is applied.
// The result is ordered by descending confidence.
func Decode(data []float32, dims []int, format Format, p DecodeParams) ([]model.Detection, error) {
	rows, cols, err := outputShape(dims)
	if err != nil {
		return nil, err
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrUnexpectedOutput, len(data), dims)
	}
	if p.InputSize <= 0 {
		return nil, fmt.Errorf("%w: input size %d", ErrUnexpectedOutput, p.InputSize)
	}

	var cands []candidate
	switch format {
	case FormatYOLOv8:
		cands, err = decodeYOLOv8(data, rows, cols, p)
	case FormatYOLOv5:
		cands, err = decodeYOLOv5(data, rows, cols, p)
	default:
		err = fmt.Errorf("unknown model format %q", format)
	}
	if err != nil {
		return nil, err
	}

	kept := nms(cands, p.NMSThreshold)

	detections := make([]model.Detection, 0, len(kept))
	for _, c := range kept {
		detections = append(detections, model.NewDetection(
			c.box.X1, c.box.Y1, c.box.X2, c.box.Y2,
			p.FrameWidth, p.FrameHeight,
			c.score, c.classID, ClassName(p.Labels, c.classID),
		))
	}
	return detections, nil
}

// outputShape drops a leading batch dimension of 1 and returns the two remaining dims.
func outputShape(dims []int) (int, int, error) {
	switch {
	case len(dims) == 3 && dims[0] == 1:
		return dims[1], dims[2], nil
	case len(dims) == 2:
		return dims[0], dims[1], nil
	default:
		return 0, 0, fmt.Errorf("%w: shape %v", ErrUnexpectedOutput, dims)
	}
}

// decodeYOLOv8 reads a channel-major [4+nc, N] tensor.
func decodeYOLOv8(data []float32, channels, n int, p DecodeParams) ([]candidate, error) {
	nc := channels - 4
	if nc < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnexpectedOutput, channels)
	}

	var out []candidate
	for i := 0; i < n; i++ {
		best, bestScore := 0, float32(-1)
		for c := 0; c < nc; c++ {
			if s := data[(4+c)*n+i]; s > bestScore {
				best, bestScore = c, s
			}
		}
		if float64(bestScore) < p.ConfThreshold {
			continue
		}
		out = append(out, candidate{
			box:     scaleBox(data[i], data[n+i], data[2*n+i], data[3*n+i], p),
			score:   float64(bestScore),
			classID: best,
		})
	}
	return out, nil
}

// decodeYOLOv5 reads a row-major [N, 5+nc] tensor.
func decodeYOLOv5(data []float32, n, width int, p DecodeParams) ([]candidate, error) {
	nc := width - 5
	if nc < 1 {
		return nil, fmt.Errorf("%w: row width %d", ErrUnexpectedOutput, width)
	}

	var out []candidate
	for i := 0; i < n; i++ {
		row := data[i*width : (i+1)*width]
		objectness := row[4]
		if float64(objectness) < p.ConfThreshold {
			continue
		}

		best, bestScore := 0, float32(-1)
		for c := 0; c < nc; c++ {
			if s := row[5+c]; s > bestScore {
				best, bestScore = c, s
			}
		}
		score := float64(objectness) * float64(bestScore)
		if score < p.ConfThreshold {
			continue
		}
		out = append(out, candidate{
			box:     scaleBox(row[0], row[1], row[2], row[3], p),
			score:   score,
			classID: best,
		})
	}
	return out, nil
}

// scaleBox maps a center-format box in network input space to corner format in frame space.
func scaleBox(cx, cy, w, h float32, p DecodeParams) model.BBox {
	xf := float64(p.FrameWidth) / float64(p.InputSize)
	yf := float64(p.FrameHeight) / float64(p.InputSize)

	return model.BBox{
		X1: (float64(cx) - float64(w)/2) * xf,
		Y1: (float64(cy) - float64(h)/2) * yf,
		X2: (float64(cx) + float64(w)/2) * xf,
		Y2: (float64(cy) + float64(h)/2) * yf,
	}
}

// nms keeps the highest scoring box of every overlapping group of the same class.
func nms(cands []candidate, threshold float64) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	suppressed := make([]bool, len(cands))
	kept := make([]candidate, 0, len(cands))
	for i := range cands {
		if suppressed[i] {
			continue
		}
		kept = append(kept, cands[i])
		for j := i + 1; j < len(cands); j++ {
			if suppressed[j] || cands[j].classID != cands[i].classID {
				continue
			}
			if iou(cands[i].box, cands[j].box) > threshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

func iou(a, b model.BBox) float64 {
	ix1, iy1 := max(a.X1, b.X1), max(a.Y1, b.Y1)
	ix2, iy2 := min(a.X2, b.X2), min(a.Y2, b.Y2)

	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := a.Width()*a.Height() + b.Width()*b.Height() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// ClassName returns the label for classID, or class_<id> when it is out of range.
func ClassName(labels []string, classID int) string {
	if classID >= 0 && classID < len(labels) {
		return labels[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}
