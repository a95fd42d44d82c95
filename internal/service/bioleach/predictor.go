// Package bioleach predicts copper recovery from bioleaching process parameters
// with a small dense network exported to JSON.
package bioleach

import (
	"errors"
	"fmt"
	"math"
	"os"

	jsoniter "github.com/json-iterator/go"
	"gonum.org/v1/gonum/mat"
)

// FeatureCount is the number of model inputs.
const FeatureCount = 10

// RecoveryDivisor converts the raw network output to the reported recovery value.
const RecoveryDivisor = 100000

var (
	// ErrMissingField is returned when a required input is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidModel is returned when the artifacts do not fit together.
	ErrInvalidModel = errors.New("invalid model")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Imputer replaces missing (NaN) inputs with per-feature statistics.
type Imputer struct {
	Strategy   string    `json:"strategy"`
	Statistics []float64 `json:"statistics"`
}

// Transform returns x with NaN entries replaced.
func (im Imputer) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) && i < len(im.Statistics) {
			v = im.Statistics[i]
		}
		out[i] = v
	}
	return out
}

// Scaler standardizes inputs as (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform returns the standardized copy of x. A zero scale leaves the centered value as is.
func (s Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

// LayerSpec is one dense layer as exported: weights are [inputs][units].
type LayerSpec struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// ModelSpec is the exported network.
type ModelSpec struct {
	Layers []LayerSpec `json:"layers"`
}

type layer struct {
	w    *mat.Dense
	b    []float64
	act  func(float64) float64
	name string
}

// Predictor runs impute, scale and the network forward pass.
type Predictor struct {
	imputer Imputer
	scaler  Scaler
	layers  []layer
}

// Load reads the three JSON artifacts and builds a Predictor.
func Load(modelPath, imputerPath, scalerPath string) (*Predictor, error) {
	var spec ModelSpec
	if err := readJSON(modelPath, &spec); err != nil {
		return nil, err
	}
	var imputer Imputer
	if err := readJSON(imputerPath, &imputer); err != nil {
		return nil, err
	}
	var scaler Scaler
	if err := readJSON(scalerPath, &scaler); err != nil {
		return nil, err
	}
	return New(imputer, scaler, spec)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// New validates the artifacts against each other and builds a Predictor.
func New(imputer Imputer, scaler Scaler, spec ModelSpec) (*Predictor, error) {
	if len(imputer.Statistics) != FeatureCount {
		return nil, fmt.Errorf("%w: imputer has %d statistics, want %d", ErrInvalidModel, len(imputer.Statistics), FeatureCount)
	}
	if len(scaler.Mean) != FeatureCount || len(scaler.Scale) != FeatureCount {
		return nil, fmt.Errorf("%w: scaler has %d/%d entries, want %d", ErrInvalidModel, len(scaler.Mean), len(scaler.Scale), FeatureCount)
	}
	if len(spec.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidModel)
	}

	p := &Predictor{imputer: imputer, scaler: scaler}
	width := FeatureCount
	for i, ls := range spec.Layers {
		l, err := buildLayer(ls, width)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrInvalidModel, i, err)
		}
		p.layers = append(p.layers, l)
		_, width = l.w.Dims()
	}
	if width != 1 {
		return nil, fmt.Errorf("%w: output width %d, want 1", ErrInvalidModel, width)
	}
	return p, nil
}

func buildLayer(ls LayerSpec, inputs int) (layer, error) {
	if len(ls.Weights) != inputs {
		return layer{}, fmt.Errorf("%d weight rows, want %d", len(ls.Weights), inputs)
	}
	units := len(ls.Bias)
	if units == 0 {
		return layer{}, fmt.Errorf("empty bias")
	}

	data := make([]float64, 0, inputs*units)
	for r, row := range ls.Weights {
		if len(row) != units {
			return layer{}, fmt.Errorf("weight row %d has %d columns, want %d", r, len(row), units)
		}
		data = append(data, row...)
	}

	act, err := activation(ls.Activation)
	if err != nil {
		return layer{}, err
	}

	return layer{
		w:    mat.NewDense(inputs, units, data),
		b:    append([]float64(nil), ls.Bias...),
		act:  act,
		name: ls.Activation,
	}, nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case "relu":
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case "linear", "":
		return func(v float64) float64 { return v }, nil
	case "sigmoid":
		return func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }, nil
	case "tanh":
		return math.Tanh, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// Predict returns the raw network output for one sample of FeatureCount inputs.
func (p *Predictor) Predict(features []float64) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrMissingField, len(features), FeatureCount)
	}

	x := p.scaler.Transform(p.imputer.Transform(features))
	cur := mat.NewDense(1, len(x), x)

	for _, l := range p.layers {
		_, units := l.w.Dims()
		next := mat.NewDense(1, units, nil)
		next.Mul(cur, l.w)
		row := next.RawRowView(0)
		for j := range row {
			row[j] = l.act(row[j] + l.b[j])
		}
		cur = next
	}
	return cur.At(0, 0), nil
}

// CopperRecovery scales a raw prediction and rounds it to two decimals.
func CopperRecovery(raw float64) float64 {
	return math.Round(raw/RecoveryDivisor*100) / 100
}
