package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"ewastevision/internal/config"
	"ewastevision/internal/dto"
	"ewastevision/internal/handler"
	"ewastevision/internal/logger"
	"ewastevision/internal/model"
	"ewastevision/internal/repository"
	"ewastevision/internal/repository/sqlite"
	"ewastevision/internal/route"
	"ewastevision/internal/service/ai"
	"ewastevision/internal/service/capture"
	"ewastevision/internal/service/render"
	"ewastevision/internal/service/storage"
	"ewastevision/internal/service/stream"
	wsservice "ewastevision/internal/service/websocket"
)

const secondModelPrefix = "m2_"

// RunStream captures from the camera, runs every configured model on each frame
// and serves the annotated stream until ctx is cancelled.
func (a *App) RunStream(ctx context.Context) error {
	cfg := a.config

	opts, err := detectorOptions(cfg, cfg.ConfThreshold)
	if err != nil {
		return err
	}
	detectors, err := loadDetectors(opts, a.logger)
	if err != nil {
		return err
	}
	defer a.releaseDetectors(detectors)

	camera := a.openCamera()

	snapshotRepo, detectionRepo, closeDB := a.openHistory()
	defer closeDB()

	slot := capture.NewFrameSlot(cfg.JPEGQuality)
	defer slot.Close()

	hub := wsservice.NewHubService(a.logger)
	buffer := storage.NewBufferService(cfg, a.logger, snapshotRepo, detectionRepo)
	source := fmt.Sprintf("camera%d", cfg.CameraIndex)

	var producer *capture.Producer
	if camera != nil {
		producer = capture.NewProducer(camera, asCaptureDetectors(detectors), render.NewRenderer(renderColors(cfg)), slot, a.logger,
			snapshotObserver(buffer, source, cfg.JPEGQuality, a.logger),
			feedObserver(hub, a.logger),
		)
	}
	streamer := stream.NewStreamer(slot, cfg.StreamInterval, a.logger)

	ip := localIP()
	colors := model.EWasteColors()
	router := route.SetupStreamRoutes(route.StreamDeps{
		Stream:    streamer,
		Colors:    colors,
		Page:      handler.NewPageInfo(ip, cfg.Port, "/video_feed", model.EWasteClasses, colors),
		Hub:       hub,
		Snapshots: buffer,
		Health:    streamHealth(producer, streamer, hub, detectorNames(detectors)),
	}, cfg, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		buffer.Run(gctx)
		return nil
	})
	// The server keeps serving the last frame after the producer stopped.
	if producer != nil {
		g.Go(func() error {
			err := producer.Run(gctx)
			switch {
			case err == nil:
			case errors.Is(err, capture.ErrSourceEnded):
				a.logger.Warning("Camera %d stopped delivering frames", cfg.CameraIndex)
			default:
				a.logger.Error("Frame producer failed: %v", err)
			}
			return nil
		})
	}
	a.serve(gctx, g, cfg.Port, router)

	fmt.Printf("🚀 E-waste Detection Stream\n")
	fmt.Printf("📍 Local:   http://localhost:%d\n", cfg.Port)
	fmt.Printf("🌐 Network: http://%s:%d\n", ip, cfg.Port)
	fmt.Printf("🎥 Stream:  http://%s:%d/api/video_feed\n", ip, cfg.Port)
	fmt.Printf("🏷️  Classes: http://%s:%d/api/classes\n", ip, cfg.Port)
	fmt.Printf("🤖 Models:  %v\n", detectorNames(detectors))

	return g.Wait()
}

// openVideoCapture opens a local camera device through OpenCV.
func openVideoCapture(index int) (capture.Source, error) {
	camera, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, err
	}
	return camera, nil
}

// openCamera returns nil when the camera cannot be opened. The server then runs
// without a producer and the stream stays empty.
func (a *App) openCamera() capture.Source {
	camera, err := a.openVideo(a.config.CameraIndex)
	if err != nil {
		a.logger.Warning("Failed to open camera %d, streaming without frames: %v", a.config.CameraIndex, err)
		return nil
	}
	return camera
}

// streamHealth reports the producer as stopped when there is none.
func streamHealth(producer *capture.Producer, streamer *stream.Streamer, hub *wsservice.HubService, models []string) func() dto.HealthResponse {
	return func() dto.HealthResponse {
		resp := dto.HealthResponse{
			Status:        "ok",
			Producer:      capture.StateStopped.String(),
			StreamClients: streamer.Clients(),
			FeedClients:   hub.GetClientCount(),
			Models:        models,
		}
		if producer != nil {
			resp.Producer = producer.State().String()
			resp.Frames = producer.Frames()
		}
		return resp
	}
}

// openHistory opens the snapshot database. Without it snapshots are still written
// to disk, only the history endpoints stay empty.
func (a *App) openHistory() (repository.SnapshotRepository, repository.DetectionRepository, func()) {
	db, err := sqlite.New(a.config.DatabasePath)
	if err != nil {
		a.logger.Warning("Snapshot history disabled: %v", err)
		return nil, nil, func() {}
	}
	a.logger.Info("Snapshot database opened at %s", a.config.DatabasePath)

	return sqlite.NewSnapshotRepository(db), sqlite.NewDetectionRepository(db), func() {
		if err := db.Close(); err != nil {
			a.logger.Warning("Error closing database: %v", err)
		}
	}
}

// detectorOptions builds the options of the first model and, when configured,
// the second one.
func detectorOptions(cfg *config.Config, confThreshold float64) ([]ai.Options, error) {
	format, err := ai.ParseFormat(cfg.ModelFormat)
	if err != nil {
		return nil, err
	}

	first := ai.Options{
		Name:          "model1",
		ModelPath:     cfg.ModelPath,
		LabelsPath:    cfg.LabelsPath,
		Format:        format,
		InputSize:     cfg.InputSize,
		ConfThreshold: confThreshold,
		NMSThreshold:  cfg.NMSThreshold,
	}
	opts := []ai.Options{first}

	if cfg.SecondModelPath == "" {
		return opts, nil
	}

	second := first
	second.Name = "model2"
	second.ModelPath = cfg.SecondModelPath
	second.LabelsPath = cfg.SecondLabelsPath
	if cfg.SecondModelFormat != "" {
		if second.Format, err = ai.ParseFormat(cfg.SecondModelFormat); err != nil {
			return nil, err
		}
	}
	if cfg.PrefixSecond {
		second.ClassPrefix = secondModelPrefix
	}
	return append(opts, second), nil
}

// loadDetectors loads every model; nothing stays open when one of them fails.
func loadDetectors(opts []ai.Options, log *logger.Logger) ([]*ai.DetectorService, error) {
	detectors := make([]*ai.DetectorService, 0, len(opts))
	for _, o := range opts {
		d, err := ai.NewDetectorService(o, log)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("loading %s: %w", o.Name, err), closeDetectors(detectors))
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

func closeDetectors(detectors []*ai.DetectorService) error {
	var err error
	for _, d := range detectors {
		err = multierr.Append(err, d.Close())
	}
	return err
}

// releaseDetectors closes every model and logs what failed to close.
func (a *App) releaseDetectors(detectors []*ai.DetectorService) {
	if err := closeDetectors(detectors); err != nil {
		a.logger.Warning("Error releasing models: %v", err)
	}
}

func asCaptureDetectors(detectors []*ai.DetectorService) []capture.Detector {
	out := make([]capture.Detector, 0, len(detectors))
	for _, d := range detectors {
		out = append(out, d)
	}
	return out
}

func detectorNames(detectors []*ai.DetectorService) []string {
	names := make([]string, 0, len(detectors))
	for _, d := range detectors {
		names = append(names, d.Name())
	}
	return names
}

// renderColors extends the class colors with the prefixed names of the second model.
func renderColors(cfg *config.Config) model.ColorMap {
	colors := model.EWasteColors()
	if cfg.SecondModelPath == "" || !cfg.PrefixSecond {
		return colors
	}
	for name, c := range model.EWasteColors() {
		colors[secondModelPrefix+name] = c
	}
	return colors
}

// snapshotObserver records every Nth frame that has detections.
func snapshotObserver(buffer *storage.BufferService, source string, quality int, log *logger.Logger) capture.FrameObserver {
	return capture.ObserverFunc(func(ev capture.FrameEvent) {
		if !buffer.Wants(ev.Seq, len(ev.Detections)) {
			return
		}
		data, err := render.EncodeJPEG(ev.Frame, quality)
		if err != nil {
			log.Warning("Failed to encode snapshot: %v", err)
			return
		}
		buffer.AddImage(data, source, ev.Detections)
	})
}

// feedObserver pushes each frame's detections to the WebSocket feed.
func feedObserver(hub *wsservice.HubService, log *logger.Logger) capture.FrameObserver {
	return capture.ObserverFunc(func(ev capture.FrameEvent) {
		if hub.GetClientCount() == 0 {
			return
		}
		err := hub.BroadcastJSON(dto.DetectionEvent{
			Seq:        ev.Seq,
			Timestamp:  ev.Timestamp,
			FPS:        ev.FPS,
			Detections: dto.FromDetections(ev.Detections, true),
		})
		if err != nil {
			log.Warning("Failed to publish detection event: %v", err)
		}
	})
}
