package route

import (
	"net/http"

	"ewastevision/internal/config"
	"ewastevision/internal/dto"
	"ewastevision/internal/handler"
	"ewastevision/internal/logger"
	"ewastevision/internal/middleware"
	"ewastevision/internal/model"
	wsservice "ewastevision/internal/service/websocket"
)

// StreamDeps are the services behind the streaming server routes.
type StreamDeps struct {
	Stream    http.Handler
	Colors    model.ColorMap
	Page      handler.PageInfo
	Hub       *wsservice.HubService
	Snapshots handler.SnapshotStore
	Health    func() dto.HealthResponse
}

// SetupStreamRoutes registers the MJPEG stream, demo page, class legend, detection
// feed, snapshot history and log endpoints.
func SetupStreamRoutes(deps StreamDeps, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Stream endpoints
	mux.Handle("GET /api/video_feed", deps.Stream)
	mux.Handle("GET /video_feed", deps.Stream)
	mux.HandleFunc("GET /api/classes", handler.ClassesHandler(deps.Colors))
	mux.HandleFunc("GET /{$}", handler.IndexHandler(deps.Page, logger))

	// API endpoints
	mux.HandleFunc("GET /api/detections/ws", handler.DetectionFeedHandler(deps.Hub, logger))
	mux.HandleFunc("GET /api/snapshots", handler.SnapshotsHandler(deps.Snapshots, logger))
	mux.HandleFunc("GET /api/snapshots/view", handler.ViewSnapshotHandler(deps.Snapshots))
	mux.HandleFunc("GET /api/health", handler.HealthHandler(deps.Health))

	// Log endpoints
	mux.HandleFunc("GET /logs/{level}", handler.ShowLogsHandler(logger))
	mux.HandleFunc("POST /logs/{level}/clear", handler.ClearLogsHandler(logger))

	return wrap(mux, cfg, logger)
}

// SetupDetectRoutes registers the single-image detection endpoint.
func SetupDetectRoutes(detector handler.ImageDetector, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/detect", handler.DetectHandler(detector, handler.NewValidator(), logger))
	return wrap(mux, cfg, logger)
}

// SetupBioleachRoutes registers the copper recovery regression API.
func SetupBioleachRoutes(predictor handler.Predictor, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	predict := handler.PredictHandler(predictor, handler.NewValidator(), logger)
	mux.HandleFunc("GET /{$}", handler.BioleachRootHandler())
	mux.HandleFunc("POST /predict/", predict)
	mux.HandleFunc("POST /predict", predict)

	return wrap(mux, cfg, logger)
}

// wrap applies the middleware shared by every server.
func wrap(mux *http.ServeMux, cfg *config.Config, logger *logger.Logger) http.Handler {
	return middleware.Chain(mux,
		middleware.Recover(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)
}
