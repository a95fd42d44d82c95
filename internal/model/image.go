package model

import "time"

// Snapshot represents an annotated frame stored on disk while streaming.
type Snapshot struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
}

// SnapshotDetection is a detection row attached to a stored snapshot.
type SnapshotDetection struct {
	ID         int64   `json:"id"`
	SnapshotID int64   `json:"snapshot_id"`
	ClassName  string  `json:"class_name"`
	ClassID    int     `json:"class_id"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
}
