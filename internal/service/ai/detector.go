package ai

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"ewastevision/internal/logger"
	"ewastevision/internal/model"
)

// Options configures one DetectorService.
type Options struct {
	// Name identifies the model in logs, e.g. "model1".
	Name          string
	ModelPath     string
	LabelsPath    string
	Format        Format
	InputSize     int
	ConfThreshold float64
	NMSThreshold  float64
	// ClassPrefix is prepended to every class name this model reports.
	ClassPrefix string
}

// DetectorService runs an ONNX detection model through the OpenCV DNN module.
// It is safe for concurrent use; inference calls are serialized.
type DetectorService struct {
	mu     sync.Mutex
	net    gocv.Net
	loaded bool

	opts   Options
	labels []string
	logger *logger.Logger
}

// NewDetectorService loads the model and its labels. A missing labels file is not
// fatal: the built-in e-waste classes are used instead.
func NewDetectorService(opts Options, log *logger.Logger) (*DetectorService, error) {
	if opts.InputSize <= 0 {
		opts.InputSize = 640
	}
	if opts.Format == "" {
		opts.Format = FormatYOLOv8
	}
	if opts.Name == "" {
		opts.Name = opts.ModelPath
	}

	service := &DetectorService{
		opts:   opts,
		logger: log,
	}

	service.labels = service.loadLabels()

	if err := service.initializeNet(); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *DetectorService) loadLabels() []string {
	var labels []string
	if s.opts.LabelsPath != "" {
		l, err := LoadLabels(s.opts.LabelsPath)
		if err != nil {
			s.logger.Warning("Could not load labels for %s: %v, using built-in classes", s.opts.Name, err)
		} else {
			labels = l
		}
	}
	if labels == nil {
		labels = DefaultLabels()
	}

	if s.opts.ClassPrefix != "" {
		for i := range labels {
			labels[i] = s.opts.ClassPrefix + labels[i]
		}
	}
	return labels
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.opts.ModelPath); err != nil {
		return fmt.Errorf("model file not found: %s: %w", s.opts.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(s.opts.ModelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.opts.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.loaded = true
	s.logger.Info("Detection network %s initialized (%s, %d classes)", s.opts.Name, s.opts.Format, len(s.labels))
	return nil
}

// Name returns the configured model name.
func (s *DetectorService) Name() string {
	return s.opts.Name
}

// Labels returns the class names reported by this model.
func (s *DetectorService) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Detect runs the model over frame and returns detections in frame coordinates.
// The frame is not modified.
func (s *DetectorService) Detect(frame gocv.Mat) ([]model.Detection, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrInvalidImage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, ErrModelNotLoaded
	}

	size := s.opts.InputSize
	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	output := s.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, fmt.Errorf("%s: %w: empty output", s.opts.Name, ErrUnexpectedOutput)
	}

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%s: read output: %w", s.opts.Name, err)
	}

	return Decode(data, output.Size(), s.opts.Format, DecodeParams{
		ConfThreshold: s.opts.ConfThreshold,
		NMSThreshold:  s.opts.NMSThreshold,
		InputSize:     size,
		FrameWidth:    frame.Cols(),
		FrameHeight:   frame.Rows(),
		Labels:        s.labels,
	})
}

// DetectBytes decodes an encoded image (JPEG, PNG, ...) and runs Detect on it.
func (s *DetectorService) DetectBytes(imageBytes []byte) ([]model.Detection, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrInvalidImage)
	}

	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: decoded image is empty", ErrInvalidImage)
	}

	return s.Detect(mat)
}

// Close releases the network. Detect returns ErrModelNotLoaded afterwards.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}
	s.loaded = false
	return s.net.Close()
}
