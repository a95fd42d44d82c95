package bioleach

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func identityArtifacts() (Imputer, Scaler) {
	stats := make([]float64, FeatureCount)
	mean := make([]float64, FeatureCount)
	scale := make([]float64, FeatureCount)
	for i := range stats {
		stats[i] = float64(i + 1)
		scale[i] = 1
	}
	return Imputer{Strategy: "mean", Statistics: stats}, Scaler{Mean: mean, Scale: scale}
}

func sumLayer(activation string) LayerSpec {
	w := make([][]float64, FeatureCount)
	for i := range w {
		w[i] = []float64{1}
	}
	return LayerSpec{Weights: w, Bias: []float64{0}, Activation: activation}
}

func ones() []float64 {
	x := make([]float64, FeatureCount)
	for i := range x {
		x[i] = 1
	}
	return x
}

func TestPredict_LinearSum(t *testing.T) {
	imp, sc := identityArtifacts()
	p, err := New(imp, sc, ModelSpec{Layers: []LayerSpec{sumLayer("linear")}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := p.Predict(ones())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if got != 10 {
		t.Errorf("Expected 10, got %v", got)
	}
}

func TestPredict_ImputesNaN(t *testing.T) {
	imp, sc := identityArtifacts()
	p, err := New(imp, sc, ModelSpec{Layers: []LayerSpec{sumLayer("linear")}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	x := ones()
	x[4] = math.NaN() // replaced by statistic 5

	got, _ := p.Predict(x)
	if got != 14 {
		t.Errorf("Expected 14 after imputation, got %v", got)
	}
}

func TestPredict_ScalesAndRunsHiddenLayer(t *testing.T) {
	imp, sc := identityArtifacts()
	for i := range sc.Mean {
		sc.Mean[i] = 1
		sc.Scale[i] = 2
	}

	hidden := make([][]float64, FeatureCount)
	for i := range hidden {
		hidden[i] = []float64{1, -1}
	}
	spec := ModelSpec{Layers: []LayerSpec{
		{Weights: hidden, Bias: []float64{0, 0}, Activation: "relu"},
		{Weights: [][]float64{{3}, {5}}, Bias: []float64{1}, Activation: "linear"},
	}}
	p, err := New(imp, sc, spec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	x := make([]float64, FeatureCount)
	for i := range x {
		x[i] = 3 // scaled to (3-1)/2 = 1
	}

	// hidden = relu([10, -10]) = [10, 0]; output = 3*10 + 5*0 + 1
	got, _ := p.Predict(x)
	if got != 31 {
		t.Errorf("Expected 31, got %v", got)
	}
}

func TestNew_RejectsMismatchedArtifacts(t *testing.T) {
	imp, sc := identityArtifacts()

	tests := []struct {
		name string
		imp  Imputer
		sc   Scaler
		spec ModelSpec
	}{
		{"short imputer", Imputer{Statistics: []float64{1}}, sc, ModelSpec{Layers: []LayerSpec{sumLayer("linear")}}},
		{"short scaler", imp, Scaler{Mean: []float64{0}, Scale: []float64{1}}, ModelSpec{Layers: []LayerSpec{sumLayer("linear")}}},
		{"no layers", imp, sc, ModelSpec{}},
		{"wrong input rows", imp, sc, ModelSpec{Layers: []LayerSpec{{Weights: [][]float64{{1}}, Bias: []float64{0}}}}},
		{"unknown activation", imp, sc, ModelSpec{Layers: []LayerSpec{sumLayer("softmax")}}},
		{"two outputs", imp, sc, ModelSpec{Layers: []LayerSpec{{Weights: make2(FeatureCount, 2), Bias: []float64{0, 0}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.imp, tt.sc, tt.spec); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func make2(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

func TestPredict_WrongFeatureCount(t *testing.T) {
	imp, sc := identityArtifacts()
	p, _ := New(imp, sc, ModelSpec{Layers: []LayerSpec{sumLayer("linear")}})

	if _, err := p.Predict([]float64{1, 2}); !errors.Is(err, ErrMissingField) {
		t.Errorf("Expected ErrMissingField, got %v", err)
	}
}

func TestLoad_FromJSONFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	model := write("model.json", `{"layers":[{"weights":[[1],[1],[1],[1],[1],[1],[1],[1],[1],[1]],"bias":[0.5],"activation":"linear"}]}`)
	imputer := write("imputer.json", `{"strategy":"mean","statistics":[0,0,0,0,0,0,0,0,0,0]}`)
	scaler := write("scaler.json", `{"mean":[0,0,0,0,0,0,0,0,0,0],"scale":[1,1,1,1,1,1,1,1,1,1]}`)

	p, err := Load(model, imputer, scaler)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, _ := p.Predict(ones())
	if got != 10.5 {
		t.Errorf("Expected 10.5, got %v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json"), imputer, scaler); err == nil {
		t.Error("Expected error for missing model file")
	}
}

func TestCopperRecovery(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{123456, 1.23},
		{150000, 1.5},
		{4567890, 45.68},
		{0, 0},
	}
	for _, tt := range tests {
		if got := CopperRecovery(tt.raw); got != tt.want {
			t.Errorf("CopperRecovery(%v) = %v, expected %v", tt.raw, got, tt.want)
		}
	}
}
