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
		Name:  "ewaste-detect",
		Usage: "detect e-waste objects in images posted to /api/detect",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: cfg.DetectPort, Usage: "HTTP port"},
			&cli.StringFlag{Name: "model", Value: cfg.ModelPath, Usage: "ONNX model `FILE`"},
			&cli.StringFlag{Name: "labels", Value: cfg.LabelsPath, Usage: "class names, one per line"},
			&cli.StringFlag{Name: "format", Value: cfg.ModelFormat, Usage: "output layout of the model: yolov8 or yolov5"},
			&cli.Float64Flag{Name: "conf", Value: cfg.DetectConfThreshold, Usage: "confidence threshold"},
			&cli.Float64Flag{Name: "nms", Value: cfg.NMSThreshold, Usage: "NMS IoU threshold"},
			&cli.IntFlag{Name: "imgsz", Value: cfg.InputSize, Usage: "model input size"},
		},
		Action: func(c *cli.Context) error {
			cfg.DetectPort = c.Int("port")
			cfg.ModelPath = c.String("model")
			cfg.LabelsPath = c.String("labels")
			cfg.ModelFormat = c.String("format")
			cfg.DetectConfThreshold = c.Float64("conf")
			cfg.NMSThreshold = c.Float64("nms")
			cfg.InputSize = c.Int("imgsz")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.NewApp(cfg, logger.NewLogger(cfg)).RunDetect(ctx)
		},
	}

	if err := cmd.Run(os.Args); err != nil {
		log.Fatalf("Failed to start detection server: %v", err)
	}
}
