package dto

// DetectRequest is the body of POST /api/detect. Image is a data URL or plain base64.
type DetectRequest struct {
	Image string `json:"image" validate:"required"`
}

// DetectResponse is returned on successful detection.
type DetectResponse struct {
	Success    bool              `json:"success"`
	Detections []DetectionResult `json:"detections"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClassInfo describes one class in the /api/classes listing. Color is RGB.
type ClassInfo struct {
	Color [3]uint8 `json:"color"`
}
