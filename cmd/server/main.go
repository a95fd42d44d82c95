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
		Name:  "ewaste-server",
		Usage: "stream the webcam with e-waste detections over MJPEG",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: cfg.Port, Usage: "HTTP port"},
			&cli.IntFlag{Name: "camera", Value: cfg.CameraIndex, Usage: "camera device index"},
			&cli.StringFlag{Name: "model1", Value: cfg.ModelPath, Usage: "first ONNX model `FILE`"},
			&cli.StringFlag{Name: "model2", Value: cfg.SecondModelPath, Usage: "second ONNX model `FILE`, empty to run one model"},
			&cli.StringFlag{Name: "labels1", Value: cfg.LabelsPath, Usage: "class names of the first model, one per line"},
			&cli.StringFlag{Name: "labels2", Value: cfg.SecondLabelsPath, Usage: "class names of the second model, one per line"},
			&cli.StringFlag{Name: "format", Value: cfg.ModelFormat, Usage: "output layout of the models: yolov8 or yolov5"},
			&cli.StringFlag{Name: "format2", Value: cfg.SecondModelFormat, Usage: "output layout of the second model when it differs"},
			&cli.BoolFlag{Name: "prefix-second", Value: cfg.PrefixSecond, Usage: "prefix class names of the second model with m2_"},
			&cli.Float64Flag{Name: "conf", Value: cfg.ConfThreshold, Usage: "confidence threshold"},
			&cli.Float64Flag{Name: "nms", Value: cfg.NMSThreshold, Usage: "NMS IoU threshold"},
			&cli.IntFlag{Name: "imgsz", Value: cfg.InputSize, Usage: "model input size"},
			&cli.DurationFlag{Name: "interval", Value: cfg.StreamInterval, Usage: "pause between frames sent to a stream client"},
			&cli.IntFlag{Name: "quality", Value: cfg.JPEGQuality, Usage: "JPEG quality of streamed frames"},
			&cli.IntFlag{Name: "snapshot-every", Value: cfg.SnapshotEveryNth, Usage: "record every Nth frame with detections, 0 disables"},
			&cli.StringFlag{Name: "db", Value: cfg.DatabasePath, Usage: "snapshot history database"},
		},
		Action: func(c *cli.Context) error {
			cfg.Port = c.Int("port")
			cfg.CameraIndex = c.Int("camera")
			cfg.ModelPath = c.String("model1")
			cfg.SecondModelPath = c.String("model2")
			cfg.LabelsPath = c.String("labels1")
			cfg.SecondLabelsPath = c.String("labels2")
			cfg.ModelFormat = c.String("format")
			cfg.SecondModelFormat = c.String("format2")
			cfg.PrefixSecond = c.Bool("prefix-second")
			cfg.ConfThreshold = c.Float64("conf")
			cfg.NMSThreshold = c.Float64("nms")
			cfg.InputSize = c.Int("imgsz")
			cfg.StreamInterval = c.Duration("interval")
			cfg.JPEGQuality = c.Int("quality")
			cfg.SnapshotEveryNth = c.Int("snapshot-every")
			cfg.DatabasePath = c.String("db")

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.NewApp(cfg, logger.NewLogger(cfg)).RunStream(ctx)
		},
	}

	if err := cmd.Run(os.Args); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
