package ai

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// yolov8Tensor lays out rows of [cx, cy, w, h, scores...] in channel-major order.
func yolov8Tensor(rows [][]float32) ([]float32, []int) {
	channels := len(rows[0])
	n := len(rows)
	data := make([]float32, channels*n)
	for i, row := range rows {
		for c, v := range row {
			data[c*n+i] = v
		}
	}
	return data, []int{1, channels, n}
}

func params() DecodeParams {
	return DecodeParams{
		ConfThreshold: 0.5,
		NMSThreshold:  0.45,
		InputSize:     640,
		FrameWidth:    640,
		FrameHeight:   640,
		Labels:        []string{"Mobile", "PCB"},
	}
}

func TestDecode_YOLOv8_ThresholdAndNMS(t *testing.T) {
	data, dims := yolov8Tensor([][]float32{
		{100, 100, 40, 40, 0.9, 0.1},  // Mobile, kept
		{102, 101, 40, 40, 0.8, 0.1},  // overlaps first, same class, suppressed
		{102, 101, 40, 40, 0.1, 0.7},  // overlaps first, other class, kept
		{400, 400, 50, 50, 0.3, 0.2},  // below threshold
		{300, 200, 20, 60, 0.05, 0.6}, // PCB, kept
	})

	dets, err := Decode(data, dims, FormatYOLOv8, params())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(dets) != 3 {
		t.Fatalf("Expected 3 detections, got %d: %+v", len(dets), dets)
	}

	if dets[0].ClassName != "Mobile" || math.Abs(dets[0].Confidence-0.9) > 1e-6 {
		t.Errorf("Expected highest scoring Mobile first, got %+v", dets[0])
	}
	if dets[0].Box.X1 != 80 || dets[0].Box.Y1 != 80 || dets[0].Box.X2 != 120 || dets[0].Box.Y2 != 120 {
		t.Errorf("Unexpected box %+v", dets[0].Box)
	}
	for i := 1; i < len(dets); i++ {
		if dets[i].Confidence > dets[i-1].Confidence {
			t.Errorf("Expected descending confidence, got %v after %v", dets[i].Confidence, dets[i-1].Confidence)
		}
	}
	for _, d := range dets {
		if d.Confidence < 0.5 {
			t.Errorf("Detection below threshold leaked: %+v", d)
		}
	}
}

func TestDecode_ScalesToFrame(t *testing.T) {
	data, dims := yolov8Tensor([][]float32{{320, 320, 64, 64, 0.9, 0}})
	p := params()
	p.FrameWidth, p.FrameHeight = 1280, 320

	dets, err := Decode(data, dims, FormatYOLOv8, p)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(dets))
	}
	b := dets[0].Box
	if b.X1 != 576 || b.X2 != 704 || b.Y1 != 144 || b.Y2 != 176 {
		t.Errorf("Unexpected scaled box %+v", b)
	}
}

func TestDecode_ClampsBoxesToFrame(t *testing.T) {
	data, dims := yolov8Tensor([][]float32{{10, 630, 60, 60, 0.9, 0}})

	dets, err := Decode(data, dims, FormatYOLOv8, params())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b := dets[0].Box
	if b.X1 != 0 || b.Y2 != 640 {
		t.Errorf("Expected box clamped to frame, got %+v", b)
	}
}

func TestDecode_YOLOv5_UsesObjectness(t *testing.T) {
	data := []float32{
		100, 100, 40, 40, 0.9, 0.2, 0.95, // 0.855 PCB
		300, 300, 40, 40, 0.6, 0.7, 0.1, // 0.42 below threshold
		500, 500, 40, 40, 0.3, 1.0, 0.0, // objectness below threshold
	}

	dets, err := Decode(data, []int{1, 3, 7}, FormatYOLOv5, params())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("Expected 1 detection, got %d: %+v", len(dets), dets)
	}
	if dets[0].ClassID != 1 || dets[0].ClassName != "PCB" {
		t.Errorf("Expected PCB, got %+v", dets[0])
	}
	if math.Abs(dets[0].Confidence-0.855) > 1e-6 {
		t.Errorf("Expected confidence 0.855, got %v", dets[0].Confidence)
	}
}

func TestDecode_UnknownClassGetsGenericName(t *testing.T) {
	data, dims := yolov8Tensor([][]float32{{100, 100, 10, 10, 0, 0, 0.9}})

	dets, err := Decode(data, dims, FormatYOLOv8, params())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dets[0].ClassName != "class_2" {
		t.Errorf("Expected class_2, got %q", dets[0].ClassName)
	}
}

func TestDecode_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		data   []float32
		dims   []int
		format Format
	}{
		{"four dims", make([]float32, 16), []int{1, 1, 4, 4}, FormatYOLOv8},
		{"too few values", make([]float32, 3), []int{1, 6, 2}, FormatYOLOv8},
		{"no class channels v8", make([]float32, 8), []int{1, 4, 2}, FormatYOLOv8},
		{"no class channels v5", make([]float32, 10), []int{1, 2, 5}, FormatYOLOv5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, tt.dims, tt.format, params()); !errors.Is(err, ErrUnexpectedOutput) {
				t.Errorf("Expected ErrUnexpectedOutput, got %v", err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("YOLOv5"); err != nil || f != FormatYOLOv5 {
		t.Errorf("Expected yolov5, got %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatYOLOv8 {
		t.Errorf("Expected default yolov8, got %q, %v", f, err)
	}
	if _, err := ParseFormat("ssd"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("Mobile\n\n  PCB \nMouse\n"), 0644); err != nil {
		t.Fatal(err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	if len(labels) != 3 || labels[1] != "PCB" {
		t.Errorf("Unexpected labels %v", labels)
	}

	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDefaultLabels_ReturnsCopy(t *testing.T) {
	a := DefaultLabels()
	a[0] = "changed"
	if DefaultLabels()[0] != "Mobile" {
		t.Error("Expected DefaultLabels to return an independent copy")
	}
}
