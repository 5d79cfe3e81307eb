// Package model provides the pre-trained fire-risk classifiers the
// prediction service runs: a local scaler plus logistic pipeline loaded from a
// JSON artifact, and a client for a model served over HTTP.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// ErrFeatureCount is returned when a feature vector does not match the
// model's feature list.
var ErrFeatureCount = errors.New("feature vector length mismatch")

// DefaultThreshold is the decision threshold used when the artifact does not
// set one.
const DefaultThreshold = 0.5

// Artifact is the serialized form of a Pipeline.
type Artifact struct {
	Features    []string           `json:"features"`
	Scaler      ScalerParams       `json:"scaler"`
	Classifier  LogisticParams     `json:"classifier"`
	Importances map[string]float64 `json:"importances,omitempty"`
}

// ScalerParams standardizes each feature as (x - mean) / scale.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticParams is a binary logistic regression over the scaled features.
type LogisticParams struct {
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold float64   `json:"threshold,omitempty"`
}

// Pipeline implements domain.Classifier by standardizing the feature vector
// and applying a logistic classifier.
type Pipeline struct {
	features    []string
	mean        []float64
	scale       []float64
	weights     []float64
	bias        float64
	threshold   float64
	importances []Importance
}

// LoadPipeline reads and validates a JSON artifact from path.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	return NewPipeline(a)
}

// NewPipeline validates an artifact and builds a Pipeline from it.
func NewPipeline(a Artifact) (*Pipeline, error) {
	n := len(a.Features)
	if n == 0 {
		return nil, errors.New("model artifact has no features")
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n || len(a.Classifier.Weights) != n {
		return nil, fmt.Errorf("model artifact: %d features but scaler mean %d, scale %d, weights %d",
			n, len(a.Scaler.Mean), len(a.Scaler.Scale), len(a.Classifier.Weights))
	}
	for i, s := range a.Scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("model artifact: zero scale for feature %q", a.Features[i])
		}
	}

	threshold := a.Classifier.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("model artifact: threshold %v outside (0, 1)", threshold)
	}

	p := &Pipeline{
		features:  make([]string, n),
		mean:      a.Scaler.Mean,
		scale:     a.Scaler.Scale,
		weights:   a.Classifier.Weights,
		bias:      a.Classifier.Bias,
		threshold: threshold,
	}
	for i, f := range a.Features {
		p.features[i] = domain.NormalizeColumnName(f)
	}
	if len(a.Importances) > 0 {
		p.importances = ImportancesFromMap(a.Importances)
	}
	return p, nil
}

// FeatureNames returns the feature order the artifact was exported with.
func (p *Pipeline) FeatureNames() []string {
	out := make([]string, len(p.features))
	copy(out, p.features)
	return out
}

// Importances returns the artifact's feature importances, or nil if it
// carries none.
func (p *Pipeline) Importances() []Importance {
	return p.importances
}

func (p *Pipeline) Predict(ctx context.Context, x []float64) (int, error) {
	prob, err := p.PredictProbability(ctx, x)
	if err != nil {
		return 0, err
	}
	if prob >= p.threshold {
		return 1, nil
	}
	return 0, nil
}

// PredictProbability returns the probability of the fire class.
func (p *Pipeline) PredictProbability(_ context.Context, x []float64) (float64, error) {
	if len(x) != len(p.features) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), len(p.features))
	}
	z := make([]float64, len(x))
	floats.SubTo(z, x, p.mean)
	floats.Div(z, p.scale)
	return sigmoid(floats.Dot(p.weights, z) + p.bias), nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
