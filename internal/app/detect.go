package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ewastevision/internal/route"
	"ewastevision/internal/service/ai"
)

// RunDetect serves single-image detection with the first configured model.
func (a *App) RunDetect(ctx context.Context) error {
	cfg := a.config

	opts, err := detectorOptions(cfg, cfg.DetectConfThreshold)
	if err != nil {
		return err
	}
	detector, err := ai.NewDetectorService(opts[0], a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := detector.Close(); err != nil {
			a.logger.Warning("Error releasing model: %v", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	a.serve(gctx, g, cfg.DetectPort, route.SetupDetectRoutes(detector, cfg, a.logger))

	fmt.Printf("🚀 E-waste Detection API\n")
	fmt.Printf("📍 URL: http://%s:%d/api/detect\n", localIP(), cfg.DetectPort)
	fmt.Printf("🤖 AI Model: %s\n", cfg.ModelPath)

	return g.Wait()
}
