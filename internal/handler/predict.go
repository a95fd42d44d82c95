package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"ewastevision/internal/dto"
	"ewastevision/internal/logger"
	"ewastevision/internal/service/bioleach"
)

// Predictor returns the raw model output for one feature vector.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// BioleachRootHandler reports that the regression API is up.
func BioleachRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "🚀 Bioleaching Simulation API is Running!"})
	}
}

// PredictHandler validates the ten process parameters and returns the copper recovery.
func PredictHandler(predictor Predictor, validate *validator.Validate, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.PredictRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, bioleach.ErrMissingField.Error()+": "+strings.Join(missingFields(err), ", "))
			return
		}

		raw, err := predictor.Predict(req.Features())
		if err != nil {
			logger.Error("Prediction failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.PredictResponse{CopperRecovery: bioleach.CopperRecovery(raw)})
	}
}
