package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"ewastevision/internal/dto"
	"ewastevision/internal/logger"
	"ewastevision/internal/model"
	"ewastevision/internal/service/ai"
)

// ImageDetector runs detection over an encoded image.
type ImageDetector interface {
	DetectBytes(imageBytes []byte) ([]model.Detection, error)
}

// DetectHandler accepts {"image": "<data URL or base64>"} and returns the detections.
func DetectHandler(detector ImageDetector, validate *validator.Validate, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.DetectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "No image data provided")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "No image data provided")
			return
		}

		imageBytes, err := decodeImagePayload(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid image data: "+err.Error())
			return
		}

		detections, err := detector.DetectBytes(imageBytes)
		if err != nil {
			if errors.Is(err, ai.ErrInvalidImage) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("Detection failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.DetectResponse{
			Success:    true,
			Detections: dto.FromDetections(detections, false),
		})
	}
}

// decodeImagePayload accepts a data URL ("data:image/jpeg;base64,....") or bare base64.
func decodeImagePayload(payload string) ([]byte, error) {
	data := strings.TrimSpace(payload)
	if strings.HasPrefix(data, "data:") {
		_, rest, found := strings.Cut(data, ",")
		if !found {
			return nil, errors.New("malformed data URL")
		}
		data = rest
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return nil, errors.New("payload is not valid base64")
		}
	}
	if len(decoded) == 0 {
		return nil, errors.New("empty image")
	}
	return decoded, nil
}
