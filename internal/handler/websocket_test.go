package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ewastevision/internal/dto"
	"ewastevision/internal/logger"
	wsservice "ewastevision/internal/service/websocket"
)

func TestDetectionFeedHandler_ReceivesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := wsservice.NewHubService(logger.NewDiscard())
	go hub.Run(ctx)

	server := httptest.NewServer(DetectionFeedHandler(hub, logger.NewDiscard()))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	event := dto.DetectionEvent{Seq: 4, FPS: 12.5, Detections: []dto.DetectionResult{{BBox: []float64{1, 2, 3, 4}, Confidence: 0.9, Class: 1, Name: "PCB"}}}
	if err := hub.BroadcastJSON(event); err != nil {
		t.Fatalf("BroadcastJSON failed: %v", err)
	}

	var got dto.DetectionEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if got.Seq != 4 || len(got.Detections) != 1 || got.Detections[0].Name != "PCB" {
		t.Errorf("Unexpected event %+v", got)
	}
}
