package dto

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// SnapshotInfo represents a stored snapshot with the objects detected on it.
type SnapshotInfo struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Date       time.Time         `json:"date"`
	TimeOfDay  time.Time         `json:"timeOfDay"`
	Source     string            `json:"source"`
	Objects    []string          `json:"objects"`
	Detections []DetectionResult `json:"detections"`
}

// MarshalJSON formats date and time-of-day for display.
func (p SnapshotInfo) MarshalJSON() ([]byte, error) {
	type Alias SnapshotInfo
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.TimeOfDay.Format("15:04:05"),
		Alias:     (Alias)(p),
	})
}
