package ai

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		dims    []int
		format  Format
		classes int
		wantErr bool
	}{
		{[]int{1, 12, 8400}, FormatYOLOv8, 8, false},
		{[]int{1, 25200, 13}, FormatYOLOv5, 8, false},
		{[]int{84, 8400}, FormatYOLOv8, 80, false},
		{[]int{1, 4, 8400}, "", 0, true},
		{[]int{1, 2, 3, 4}, "", 0, true},
	}

	for _, tt := range tests {
		format, classes, err := InferFormat(tt.dims)
		if tt.wantErr {
			if !errors.Is(err, ErrUnexpectedOutput) {
				t.Errorf("%v: expected ErrUnexpectedOutput, got %v", tt.dims, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: unexpected error %v", tt.dims, err)
			continue
		}
		if format != tt.format || classes != tt.classes {
			t.Errorf("%v: expected %s/%d, got %s/%d", tt.dims, tt.format, tt.classes, format, classes)
		}
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		Format:      FormatYOLOv8,
		GeneratedBy: "ewaste-convert",
		InputShape:  []int{1, 3, 640, 640},
		OutputShape: []int{1, 12, 8400},
		Labels:      DefaultLabels(),
	}

	path, err := WriteManifest(dir, m)
	if err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	if path != filepath.Join(dir, ManifestName) {
		t.Errorf("Unexpected manifest path %s", path)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if got.Format != FormatYOLOv8 || len(got.Labels) != 8 || got.OutputShape[2] != 8400 {
		t.Errorf("Unexpected manifest %+v", got)
	}
}
