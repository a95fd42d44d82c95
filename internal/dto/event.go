package dto

import "time"

// DetectionEvent is pushed to live detection feed subscribers for every produced frame.
type DetectionEvent struct {
	Seq        uint64            `json:"seq"`
	Timestamp  time.Time         `json:"timestamp"`
	FPS        float64           `json:"fps"`
	Detections []DetectionResult `json:"detections"`
}

// HealthResponse reports the streaming server state.
type HealthResponse struct {
	Status        string   `json:"status"`
	Producer      string   `json:"producer"`
	Frames        uint64   `json:"frames"`
	StreamClients int64    `json:"streamClients"`
	FeedClients   int      `json:"feedClients"`
	Models        []string `json:"models"`
}
