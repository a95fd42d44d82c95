package dto

import (
	"time"

	"ewastevision/internal/model"
)

// BufferedImage holds an annotated frame and its detections before flushing to disk.
type BufferedImage struct {
	Timestamp  time.Time
	Source     string
	Detections []model.Detection
	Data       []byte
}
