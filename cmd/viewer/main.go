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
		Name:  "ewaste-viewer",
		Usage: "show detections in a local window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: string(app.ViewerMulti), Usage: "multi, image or webcam"},
			&cli.StringFlag{Name: "image", Usage: "image `FILE` for image mode"},
			&cli.BoolFlag{Name: "detect", Usage: "run the models over the image in image mode"},
			&cli.IntFlag{Name: "camera", Value: cfg.CameraIndex, Usage: "camera device index"},
			&cli.StringFlag{Name: "model1", Value: cfg.ModelPath, Usage: "first ONNX model `FILE`"},
			&cli.StringFlag{Name: "model2", Value: cfg.SecondModelPath, Usage: "second ONNX model `FILE`, empty to run one model"},
			&cli.StringFlag{Name: "format", Value: cfg.ModelFormat, Usage: "output layout of the models: yolov8 or yolov5"},
			&cli.BoolFlag{Name: "prefix-second", Value: cfg.PrefixSecond, Usage: "prefix class names of the second model with m2_"},
			&cli.Float64Flag{Name: "conf", Value: cfg.ConfThreshold, Usage: "confidence threshold"},
		},
		Action: func(c *cli.Context) error {
			mode, err := app.ParseViewerMode(c.String("mode"))
			if err != nil {
				return err
			}
			if mode == app.ViewerImage && c.String("image") == "" {
				return cli.Exit("--image is required in image mode", 2)
			}

			cfg.CameraIndex = c.Int("camera")
			cfg.ModelPath = c.String("model1")
			cfg.SecondModelPath = c.String("model2")
			cfg.ModelFormat = c.String("format")
			cfg.PrefixSecond = c.Bool("prefix-second")
			cfg.ConfThreshold = c.Float64("conf")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.NewApp(cfg, logger.NewLogger(cfg)).RunViewer(ctx, mode, c.String("image"), c.Bool("detect"))
		},
	}

	if err := cmd.Run(os.Args); err != nil {
		log.Fatalf("Viewer failed: %v", err)
	}
}
