package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ewastevision/internal/route"
	"ewastevision/internal/service/bioleach"
)

// RunBioleach serves the copper recovery regression API.
func (a *App) RunBioleach(ctx context.Context) error {
	cfg := a.config

	predictor, err := bioleach.Load(cfg.BioleachModelPath, cfg.BioleachImputerPath, cfg.BioleachScalerPath)
	if err != nil {
		return fmt.Errorf("failed to load bioleaching model: %w", err)
	}
	a.logger.Info("Bioleaching model loaded from %s", cfg.BioleachModelPath)

	g, gctx := errgroup.WithContext(ctx)
	a.serve(gctx, g, cfg.BioleachPort, route.SetupBioleachRoutes(predictor, cfg, a.logger))

	fmt.Printf("🚀 Bioleaching Simulation API\n")
	fmt.Printf("📍 URL: http://%s:%d\n", localIP(), cfg.BioleachPort)

	return g.Wait()
}
