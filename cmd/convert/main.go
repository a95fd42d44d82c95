package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"ewastevision/internal/config"
	"ewastevision/internal/service/ai"
)

func main() {
	cfg := config.Load()

	cmd := &cli.App{
		Name:  "ewaste-convert",
		Usage: "probe an exported ONNX model and write its model.json manifest",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Value: cfg.ModelPath, Usage: "ONNX model `FILE`"},
			&cli.StringFlag{Name: "labels", Value: cfg.LabelsPath, Usage: "class names, one per line"},
			&cli.IntFlag{Name: "imgsz", Value: cfg.InputSize, Usage: "model input size"},
			&cli.StringFlag{Name: "out", Usage: "output directory, defaults to the model's directory"},
		},
		Action: func(c *cli.Context) error {
			modelPath := c.String("model")
			size := c.Int("imgsz")

			fmt.Printf("Probing %s...\n", modelPath)
			shape, err := ai.Probe(modelPath, size)
			if err != nil {
				return err
			}

			format, classes, err := ai.InferFormat(shape)
			if err != nil {
				return err
			}

			labels := ai.DefaultLabels()
			if path := c.String("labels"); path != "" {
				if labels, err = ai.LoadLabels(path); err != nil {
					return err
				}
			}
			if len(labels) != classes {
				fmt.Printf("Warning: model reports %d classes, %d labels known\n", classes, len(labels))
			}

			dir := c.String("out")
			if dir == "" {
				dir = filepath.Dir(modelPath)
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			path, err := ai.WriteManifest(dir, ai.Manifest{
				Format:      format,
				GeneratedBy: "ewaste-convert",
				InputShape:  []int{1, 3, size, size},
				OutputShape: shape,
				Labels:      labels,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Model is %s with %d classes, output %v\n", format, classes, shape)
			fmt.Printf("Manifest saved to %s\n", path)
			return nil
		},
	}

	if err := cmd.Run(os.Args); err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
}
