package dto

import "ewastevision/internal/model"

// DetectionResult is the wire form of one detection.
type DetectionResult struct {
	BBox       []float64 `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Class      int       `json:"class"`
	Name       string    `json:"name,omitempty"`
}

// FromDetections converts detections to their wire form. Class names are only
// included when withNames is set.
func FromDetections(detections []model.Detection, withNames bool) []DetectionResult {
	results := make([]DetectionResult, 0, len(detections))
	for _, d := range detections {
		r := DetectionResult{
			BBox:       d.Box.Slice(),
			Confidence: d.Confidence,
			Class:      d.ClassID,
		}
		if withNames {
			r.Name = d.ClassName
		}
		results = append(results, r)
	}
	return results
}
