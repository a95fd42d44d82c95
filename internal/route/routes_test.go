package route

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ewastevision/internal/config"
	"ewastevision/internal/dto"
	"ewastevision/internal/handler"
	"ewastevision/internal/logger"
	"ewastevision/internal/middleware"
	"ewastevision/internal/model"
	wsservice "ewastevision/internal/service/websocket"
)

type stubDetector struct{}

func (stubDetector) DetectBytes([]byte) ([]model.Detection, error) { return nil, nil }

type stubPredictor struct{}

func (stubPredictor) Predict([]float64) (float64, error) { return 1234567, nil }

type stubStore struct{}

func (stubStore) Recent(*dto.SnapshotFilters) (*dto.SnapshotsData, error) {
	return &dto.SnapshotsData{Snapshots: []dto.SnapshotInfo{}}, nil
}

func (stubStore) Path(string) (string, error) { return "", http.ErrMissingFile }

func testConfig() *config.Config {
	return &config.Config{AllowedOrigins: []string{"*"}}
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetupDetectRoutes(t *testing.T) {
	h := SetupDetectRoutes(stubDetector{}, testConfig(), logger.NewDiscard())

	rec := do(h, http.MethodPost, "/api/detect", `{"image":"aGVsbG8="}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected request id header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected CORS header")
	}

	if rec := do(h, http.MethodGet, "/api/detect", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}
}

func TestSetupBioleachRoutes(t *testing.T) {
	h := SetupBioleachRoutes(stubPredictor{}, testConfig(), logger.NewDiscard())
	body := `{"C1R1":1,"C1G1":1,"C1B1":1,"PH1":1,"Fe_plus2":1,"Fe_plus3":1,"acid_conc":1,"pulp_density":1,"temp":1,"time":1}`

	tests := []struct {
		method, path, body string
		want               int
		contains           string
	}{
		{http.MethodGet, "/", "", http.StatusOK, "Running"},
		{http.MethodPost, "/predict/", body, http.StatusOK, `"Copper_Recovery":12.35`},
		{http.MethodPost, "/predict", body, http.StatusOK, "Copper_Recovery"},
		{http.MethodPost, "/predict/", `{}`, http.StatusUnprocessableEntity, "missing field"},
		{http.MethodGet, "/unknown", "", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := do(h, tt.method, tt.path, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.contains) {
			t.Errorf("%s %s: expected body containing %q, got %s", tt.method, tt.path, tt.contains, rec.Body.String())
		}
	}
}

func TestSetupStreamRoutes(t *testing.T) {
	colors := model.EWasteColors()
	deps := StreamDeps{
		Stream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("stream"))
		}),
		Colors:    colors,
		Page:      handler.NewPageInfo("10.0.0.2", 5001, "/video_feed", model.EWasteClasses, colors),
		Hub:       wsservice.NewHubService(logger.NewDiscard()),
		Snapshots: stubStore{},
		Health:    func() dto.HealthResponse { return dto.HealthResponse{Status: "ok"} },
	}
	h := SetupStreamRoutes(deps, testConfig(), logger.NewDiscard())

	tests := []struct {
		path     string
		want     int
		contains string
	}{
		{"/api/video_feed", http.StatusOK, "stream"},
		{"/video_feed", http.StatusOK, "stream"},
		{"/api/classes", http.StatusOK, `"Keyboard"`},
		{"/", http.StatusOK, "10.0.0.2"},
		{"/api/snapshots", http.StatusOK, `"snapshots"`},
		{"/api/health", http.StatusOK, `"status":"ok"`},
		{"/nothing-here", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := do(h, http.MethodGet, tt.path, "")
		if rec.Code != tt.want {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.want, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.contains) {
			t.Errorf("GET %s: expected body containing %q", tt.path, tt.contains)
		}
	}
}
