package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"ewastevision/internal/app"
	"ewastevision/internal/config"
	"ewastevision/internal/logger"
)

func main() {
	cfg := config.Load()

	cmd := &cli.App{
		Name:  "bioleach",
		Usage: "predict copper recovery of a bioleaching run",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: cfg.BioleachPort, Usage: "HTTP port"},
			&cli.StringFlag{Name: "model", Value: cfg.BioleachModelPath, Usage: "dense network weights `FILE`"},
			&cli.StringFlag{Name: "imputer", Value: cfg.BioleachImputerPath, Usage: "imputer statistics `FILE`"},
			&cli.StringFlag{Name: "scaler", Value: cfg.BioleachScalerPath, Usage: "standard scaler `FILE`"},
		},
		Action: func(c *cli.Context) error {
			cfg.BioleachPort = c.Int("port")
			cfg.BioleachModelPath = c.String("model")
			cfg.BioleachImputerPath = c.String("imputer")
			cfg.BioleachScalerPath = c.String("scaler")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.NewApp(cfg, logger.NewLogger(cfg)).RunBioleach(ctx)
		},
	}

	if err := cmd.Run(os.Args); err != nil {
		log.Fatalf("Failed to start bioleaching server: %v", err)
	}
}
