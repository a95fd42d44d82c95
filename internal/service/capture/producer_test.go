package capture

import (
	"context"
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"ewastevision/internal/logger"
	"ewastevision/internal/model"
	"ewastevision/internal/service/render"
)

type fakeSource struct {
	remaining int
	closed    int
	onRead    func()
}

func (s *fakeSource) Read(m *gocv.Mat) bool {
	if s.onRead != nil {
		s.onRead()
	}
	if s.remaining <= 0 {
		return false
	}
	s.remaining--
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(m)
	return true
}

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

type fakeDetector struct {
	detections []model.Detection
	err        error
	calls      int
}

func (d *fakeDetector) Detect(frame gocv.Mat) ([]model.Detection, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.detections, nil
}

func det(name string, conf float64) model.Detection {
	return model.NewDetection(10, 20, 50, 60, 160, 120, conf, 0, name)
}

func TestProducer_PublishesUntilSourceEnds(t *testing.T) {
	source := &fakeSource{remaining: 3}
	first := &fakeDetector{detections: []model.Detection{det("Mobile", 0.9)}}
	second := &fakeDetector{detections: []model.Detection{det("m2_Mobile", 0.8), det("m2_PCB", 0.7)}}
	slot := NewFrameSlot(90)
	defer slot.Close()

	var events []FrameEvent
	observer := ObserverFunc(func(ev FrameEvent) { events = append(events, ev) })

	p := NewProducer(source, []Detector{first, second}, render.NewRenderer(model.EWasteColors()), slot, logger.NewDiscard(), observer)
	err := p.Run(context.Background())

	if !errors.Is(err, ErrSourceEnded) {
		t.Fatalf("Expected ErrSourceEnded, got %v", err)
	}
	if p.Frames() != 3 {
		t.Errorf("Expected 3 frames, got %d", p.Frames())
	}
	if p.State() != StateStopped {
		t.Errorf("Expected stopped state, got %s", p.State())
	}
	if source.closed != 1 {
		t.Errorf("Expected source closed once, got %d", source.closed)
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 observer events, got %d", len(events))
	}
	names := []string{}
	for _, d := range events[0].Detections {
		names = append(names, d.ClassName)
	}
	if len(names) != 3 || names[0] != "Mobile" || names[1] != "m2_Mobile" || names[2] != "m2_PCB" {
		t.Errorf("Expected detections concatenated in model order, got %v", names)
	}
	if events[2].Seq != 3 {
		t.Errorf("Expected seq 3 on last event, got %d", events[2].Seq)
	}

	// The last frame stays available after the producer stopped.
	data, ok, err := slot.JPEG()
	if err != nil || !ok || len(data) == 0 {
		t.Errorf("Expected last frame to remain readable, ok=%v err=%v", ok, err)
	}
}

func TestProducer_InferenceErrorStopsLoop(t *testing.T) {
	source := &fakeSource{remaining: 5}
	boom := errors.New("boom")
	slot := NewFrameSlot(90)
	defer slot.Close()

	p := NewProducer(source, []Detector{&fakeDetector{err: boom}}, render.NewRenderer(nil), slot, logger.NewDiscard())
	err := p.Run(context.Background())

	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped inference error, got %v", err)
	}
	if _, ok := slot.Read(); ok {
		t.Error("Expected nothing published after a failed first inference")
	}
	if source.closed != 1 {
		t.Errorf("Expected source closed, got %d", source.closed)
	}
}

func TestProducer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &fakeSource{remaining: 1000}
	reads := 0
	source.onRead = func() {
		reads++
		if reads == 2 {
			cancel()
		}
	}
	slot := NewFrameSlot(90)
	defer slot.Close()

	p := NewProducer(source, nil, render.NewRenderer(nil), slot, logger.NewDiscard())
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Expected nil on cancellation, got %v", err)
	}
	if p.Frames() != 2 {
		t.Errorf("Expected 2 frames before cancellation, got %d", p.Frames())
	}
	if source.closed != 1 {
		t.Errorf("Expected source closed, got %d", source.closed)
	}
}

func TestState_String(t *testing.T) {
	if StateInferring.String() != "inferring" {
		t.Errorf("Unexpected state name %q", StateInferring.String())
	}
	if State(42).String() != "state(42)" {
		t.Errorf("Unexpected unknown state name %q", State(42).String())
	}
}

// overwritingSource delivers one black frame, then paints the capture buffer
// white in place and reports the end of the stream.
type overwritingSource struct {
	reads int
}

func (s *overwritingSource) Read(m *gocv.Mat) bool {
	s.reads++
	value := 0.0
	if s.reads > 1 {
		value = 255
	}
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(m)
	return s.reads == 1
}

func (s *overwritingSource) Close() error { return nil }

func TestProducer_PublishedFrameIsNotCaptureBuffer(t *testing.T) {
	slot := NewFrameSlot(90)
	defer slot.Close()

	p := NewProducer(&overwritingSource{}, nil, render.NewRenderer(nil), slot, logger.NewDiscard())
	if err := p.Run(context.Background()); !errors.Is(err, ErrSourceEnded) {
		t.Fatalf("Expected ErrSourceEnded, got %v", err)
	}

	frame, ok := slot.Read()
	if !ok {
		t.Fatal("Expected a published frame")
	}
	defer frame.Close()

	// Far from the FPS overlay; stays black unless the slot shares the capture buffer.
	if px := frame.GetVecbAt(110, 150); px[0] != 0 || px[1] != 0 || px[2] != 0 {
		t.Errorf("Expected published frame to keep its pixels after the next capture, got %v", px)
	}
}
