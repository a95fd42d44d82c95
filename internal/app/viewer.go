package app

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"ewastevision/internal/model"
	"ewastevision/internal/service/capture"
	"ewastevision/internal/service/render"
)

// ViewerMode selects what the desktop viewer shows.
type ViewerMode string

const (
	// ViewerMulti runs every configured model over the webcam.
	ViewerMulti ViewerMode = "multi"
	// ViewerImage shows one image file, optionally with detections.
	ViewerImage ViewerMode = "image"
	// ViewerWebcam shows the raw webcam without models.
	ViewerWebcam ViewerMode = "webcam"
)

func ParseViewerMode(s string) (ViewerMode, error) {
	switch m := ViewerMode(s); m {
	case ViewerMulti, ViewerImage, ViewerWebcam:
		return m, nil
	default:
		return "", fmt.Errorf("unknown viewer mode %q (multi, image, webcam)", s)
	}
}

const quitKey = 'q'

// RunViewer opens a local window. Webcam modes close on q or when ctx is done;
// image mode closes on any key.
func (a *App) RunViewer(ctx context.Context, mode ViewerMode, imagePath string, detect bool) error {
	switch mode {
	case ViewerImage:
		return a.showImage(imagePath, detect)
	case ViewerWebcam:
		return a.showCamera(ctx, false)
	default:
		return a.showCamera(ctx, true)
	}
}

func (a *App) showCamera(ctx context.Context, withModels bool) error {
	cfg := a.config

	var detectors []capture.Detector
	if withModels {
		opts, err := detectorOptions(cfg, cfg.ConfThreshold)
		if err != nil {
			return err
		}
		loaded, err := loadDetectors(opts, a.logger)
		if err != nil {
			return err
		}
		defer a.releaseDetectors(loaded)
		detectors = asCaptureDetectors(loaded)
	}

	camera, err := a.openVideo(cfg.CameraIndex)
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", cfg.CameraIndex, err)
	}

	window := gocv.NewWindow("E-waste Detection")
	defer window.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	show := capture.ObserverFunc(func(ev capture.FrameEvent) {
		window.IMShow(ev.Frame)
		if window.WaitKey(1)&0xFF == quitKey {
			cancel()
		}
	})

	slot := capture.NewFrameSlot(cfg.JPEGQuality)
	defer slot.Close()

	fmt.Println("Press 'q' to quit")
	producer := capture.NewProducer(camera, detectors, render.NewRenderer(renderColors(cfg)), slot, a.logger, show)
	if err := producer.Run(ctx); err != nil && !errors.Is(err, capture.ErrSourceEnded) {
		return err
	}
	return nil
}

func (a *App) showImage(path string, detect bool) error {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("could not read image at %s", path)
	}

	if detect {
		opts, err := detectorOptions(a.config, a.config.ConfThreshold)
		if err != nil {
			return err
		}
		detectors, err := loadDetectors(opts, a.logger)
		if err != nil {
			return err
		}
		defer a.releaseDetectors(detectors)

		// Wszystkie modele widzą czysty obraz, rysujemy na końcu.
		var all []model.Detection
		for _, d := range detectors {
			dets, err := d.Detect(img)
			if err != nil {
				return err
			}
			all = append(all, dets...)
		}
		for _, det := range all {
			fmt.Printf("%s: %.2f [%.0f %.0f %.0f %.0f]\n", det.ClassName, det.Confidence, det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)
		}
		if err := render.NewRenderer(renderColors(a.config)).RenderDetections(&img, all); err != nil {
			return err
		}
	}

	window := gocv.NewWindow("Image Viewer")
	defer window.Close()

	window.IMShow(img)
	window.WaitKey(0)
	return nil
}
