package ai

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"gocv.io/x/gocv"
)

// ManifestName is the file written next to a model by the converter.
const ManifestName = "model.json"

// Manifest describes an exported detection model.
type Manifest struct {
	Format      Format   `json:"format"`
	GeneratedBy string   `json:"generatedBy"`
	InputShape  []int    `json:"inputShape"`
	OutputShape []int    `json:"outputShape"`
	Labels      []string `json:"labels"`
}

// InferFormat guesses the head layout from an output shape and returns the
// number of classes it carries. yolov8 heads have far fewer channels than anchors.
func InferFormat(dims []int) (Format, int, error) {
	rows, cols, err := outputShape(dims)
	if err != nil {
		return "", 0, err
	}

	if rows < cols {
		if rows <= 4 {
			return "", 0, fmt.Errorf("%w: shape %v has no class scores", ErrUnexpectedOutput, dims)
		}
		return FormatYOLOv8, rows - 4, nil
	}
	if cols <= 5 {
		return "", 0, fmt.Errorf("%w: shape %v has no class scores", ErrUnexpectedOutput, dims)
	}
	return FormatYOLOv5, cols - 5, nil
}

// Probe loads an ONNX model and runs one forward pass over a blank input,
// returning the output shape.
func Probe(modelPath string, inputSize int) ([]int, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s: %w", modelPath, err)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", modelPath)
	}
	defer net.Close()

	input := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), inputSize, inputSize, gocv.MatTypeCV8UC3)
	defer input.Close()

	blob := gocv.BlobFromImage(input, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	net.SetInput(blob, "")
	output := net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, fmt.Errorf("%w: empty output", ErrUnexpectedOutput)
	}
	return output.Size(), nil
}

// WriteManifest writes m as indented JSON into dir and returns the file path.
func WriteManifest(dir string, m Manifest) (string, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
