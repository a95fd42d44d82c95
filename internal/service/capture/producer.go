package capture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"ewastevision/internal/logger"
	"ewastevision/internal/model"
	"ewastevision/internal/service/render"
)

// ErrSourceEnded is returned by Run when the camera stops delivering frames.
var ErrSourceEnded = errors.New("frame source ended")

// Source delivers frames. *gocv.VideoCapture satisfies it.
type Source interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Detector runs one model over a frame.
type Detector interface {
	Detect(frame gocv.Mat) ([]model.Detection, error)
}

// FrameEvent describes one produced frame. Frame is the annotated frame and is
// only valid for the duration of the OnFrame call.
type FrameEvent struct {
	Seq        uint64
	Timestamp  time.Time
	FPS        float64
	Detections []model.Detection
	Frame      gocv.Mat
}

// FrameObserver is notified after every rendered frame, before it is published.
type FrameObserver interface {
	OnFrame(ev FrameEvent)
}

// ObserverFunc adapts a function to FrameObserver.
type ObserverFunc func(ev FrameEvent)

// OnFrame calls f(ev).
func (f ObserverFunc) OnFrame(ev FrameEvent) { f(ev) }

// State is the producer's position in its capture loop.
type State int32

const (
	StateIdle State = iota
	StateCapturing
	StateInferring
	StateRendering
	StatePublishing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateInferring:
		return "inferring"
	case StateRendering:
		return "rendering"
	case StatePublishing:
		return "publishing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Producer runs the capture, infer, render, publish loop for one camera.
type Producer struct {
	source    Source
	detectors []Detector
	renderer  *render.Renderer
	slot      *FrameSlot
	observers []FrameObserver
	logger    *logger.Logger

	fps    render.FPSMeter
	now    func() time.Time
	state  atomic.Int32
	frames atomic.Uint64
}

// NewProducer wires a producer. Detections of all detectors are concatenated in
// the order the detectors are given.
func NewProducer(source Source, detectors []Detector, renderer *render.Renderer, slot *FrameSlot, log *logger.Logger, observers ...FrameObserver) *Producer {
	return &Producer{
		source:    source,
		detectors: detectors,
		renderer:  renderer,
		slot:      slot,
		observers: observers,
		logger:    log,
		now:       time.Now,
	}
}

// State returns the current loop state.
func (p *Producer) State() State {
	return State(p.state.Load())
}

// Frames returns how many frames have been published.
func (p *Producer) Frames() uint64 {
	return p.frames.Load()
}

// Run loops until the source fails, inference fails or ctx is cancelled.
// The source is closed on every exit path. Cancellation returns nil.
func (p *Producer) Run(ctx context.Context) error {
	defer func() {
		p.state.Store(int32(StateStopped))
		if err := p.source.Close(); err != nil {
			p.logger.Warning("Error closing frame source: %v", err)
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	p.logger.Info("Frame producer started with %d model(s)", len(p.detectors))

	for {
		if ctx.Err() != nil {
			p.logger.Info("Frame producer stopped after %d frames", p.Frames())
			return nil
		}

		p.state.Store(int32(StateCapturing))
		if ok := p.source.Read(&frame); !ok || frame.Empty() {
			p.logger.Warning("Failed to grab frame, stopping producer after %d frames", p.Frames())
			return ErrSourceEnded
		}

		if err := p.step(frame); err != nil {
			p.logger.Error("Frame producer stopped: %v", err)
			return err
		}
	}
}

// step processes one captured frame.
func (p *Producer) step(frame gocv.Mat) error {
	p.state.Store(int32(StateInferring))
	var detections []model.Detection
	for _, d := range p.detectors {
		dets, err := d.Detect(frame)
		if err != nil {
			return fmt.Errorf("inference: %w", err)
		}
		detections = append(detections, dets...)
	}

	p.state.Store(int32(StateRendering))
	now := p.now()
	fps := p.fps.Tick(now)

	annotated := frame.Clone()
	if err := p.renderer.Render(&annotated, detections, fps); err != nil {
		annotated.Close()
		return fmt.Errorf("render: %w", err)
	}

	p.state.Store(int32(StatePublishing))
	ev := FrameEvent{
		Seq:        p.frames.Load() + 1,
		Timestamp:  now,
		FPS:        fps,
		Detections: detections,
		Frame:      annotated,
	}
	for _, o := range p.observers {
		o.OnFrame(ev)
	}

	p.slot.Publish(annotated)
	p.frames.Add(1)
	return nil
}
