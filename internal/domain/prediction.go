package domain

import (
	"context"
	"time"
)

// DefaultFeatureNames is the feature order the reference classifiers were
// exported with.
var DefaultFeatureNames = []string{
	"day", "month", "year", "temperature", "rh", "ws", "rain",
	"ffmc", "dmc", "dc", "isi", "bui", "fwi",
}

// Classifier is a pre-trained binary fire-risk model. Feature vectors must
// follow FeatureNames order; that contract belongs to the model artifact.
type Classifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
	PredictProbability(ctx context.Context, features []float64) (float64, error)
	FeatureNames() []string
}

// Prediction is one verdict returned to the dashboard and published to the
// prediction sink.
type Prediction struct {
	ID          string             `json:"id"`
	Label       Label              `json:"label"`
	FireRisk    bool               `json:"fire_risk"`
	Probability float64            `json:"probability"`
	Features    map[string]float64 `json:"features"`
	PredictedAt time.Time          `json:"predicted_at"`
}

// Verdict returns the human-readable outcome.
func (p Prediction) Verdict() string {
	if p.FireRisk {
		return "fire"
	}
	return "no_fire"
}
