// Package stream serves the latest published frame as an MJPEG stream.
package stream

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"ewastevision/internal/logger"
)

const (
	// Boundary separates frames in the multipart response.
	Boundary = "frame"
	// ContentType is the response content type of an MJPEG stream.
	ContentType = "multipart/x-mixed-replace; boundary=" + Boundary
	// DefaultInterval is the pacing between frames sent to one client.
	DefaultInterval = 33 * time.Millisecond
)

// Source provides encoded frames. ok is false while nothing has been published.
type Source interface {
	Ready() <-chan struct{}
	JPEG() (data []byte, ok bool, err error)
}

// Streamer writes an independent frame sequence to every connected client.
type Streamer struct {
	source   Source
	interval time.Duration
	logger   *logger.Logger
	clients  atomic.Int64
}

// NewStreamer creates a Streamer. A non-positive interval uses DefaultInterval.
func NewStreamer(source Source, interval time.Duration, log *logger.Logger) *Streamer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Streamer{
		source:   source,
		interval: interval,
		logger:   log,
	}
}

// Clients returns the number of currently connected stream clients.
func (s *Streamer) Clients() int64 {
	return s.clients.Load()
}

// ServeHTTP streams frames until the client disconnects.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	s.clients.Add(1)
	defer s.clients.Add(-1)
	s.logger.Info("Stream client connected: %s", r.RemoteAddr)
	defer s.logger.Info("Stream client disconnected: %s", r.RemoteAddr)

	select {
	case <-s.source.Ready():
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.writeFrame(w, rc); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// writeFrame sends the current frame, if any. Only write failures are returned.
func (s *Streamer) writeFrame(w http.ResponseWriter, rc *http.ResponseController) error {
	data, ok, err := s.source.JPEG()
	if err != nil {
		s.logger.Warning("Failed to encode stream frame: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", Boundary); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}
	return rc.Flush()
}
