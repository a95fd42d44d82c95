package render

import (
	"sync"
	"time"
)

// FPSMeter derives frames per second from the time between consecutive ticks.
type FPSMeter struct {
	mu   sync.Mutex
	prev time.Time
}

// Tick records a frame at now and returns 1 / (now - previous tick).
// The first tick, and any tick that does not move time forward, returns 0.
func (m *FPSMeter) Tick(now time.Time) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.prev
	m.prev = now
	if prev.IsZero() {
		return 0
	}

	elapsed := now.Sub(prev).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return 1 / elapsed
}
