package model

import "math"

// BBox is an axis-aligned box in pixel coordinates, (X1,Y1) top-left and (X2,Y2) bottom-right.
type BBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// Width returns the box width.
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the box height.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Slice returns the box as [x1, y1, x2, y2].
func (b BBox) Slice() []float64 {
	return []float64{b.X1, b.Y1, b.X2, b.Y2}
}

// Detection is one predicted object instance.
type Detection struct {
	Box        BBox
	Confidence float64
	ClassID    int
	ClassName  string
}

// NewDetection builds a Detection with its corners ordered, clamped to a
// width x height image, and its confidence clamped to [0, 1].
func NewDetection(x1, y1, x2, y2 float64, width, height int, confidence float64, classID int, className string) Detection {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	return Detection{
		Box: BBox{
			X1: clampf(x1, 0, float64(width)),
			Y1: clampf(y1, 0, float64(height)),
			X2: clampf(x2, 0, float64(width)),
			Y2: clampf(y2, 0, float64(height)),
		},
		Confidence: clampf(confidence, 0, 1),
		ClassID:    classID,
		ClassName:  className,
	}
}

func clampf(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
