// Package prediction runs fire-risk predictions against a pre-trained
// classifier and publishes each verdict to an optional sink.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/google/uuid"
)

var (
	// ErrInvalidFeatures is returned when the supplied features do not match
	// the classifier's feature list or carry non-finite values.
	ErrInvalidFeatures = errors.New("invalid features")

	// ErrOutOfRange is returned when a feature lies outside its configured
	// bounds.
	ErrOutOfRange = errors.New("feature out of range")
)

// Sink receives every successful prediction.
type Sink interface {
	Publish(ctx context.Context, p domain.Prediction) error
}

// Range is the inclusive interval a feature value must fall in.
type Range struct {
	Min float64
	Max float64
}

// Service validates feature inputs, runs the classifier and records the
// outcome.
type Service struct {
	classifier domain.Classifier
	sink       Sink
	bounds     map[string]Range
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithSink publishes every prediction to s.
func WithSink(s Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithBounds rejects feature values outside the given ranges. Features
// without an entry are unbounded.
func WithBounds(bounds map[string]Range) Option {
	return func(svc *Service) { svc.bounds = bounds }
}

// NewService creates a prediction service around classifier.
func NewService(classifier domain.Classifier, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		logger:     logger,
		metrics:    metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FeatureNames returns the features the classifier expects, in order.
func (s *Service) FeatureNames() []string {
	return s.classifier.FeatureNames()
}

// Predict classifies one observation. features must name exactly the
// classifier's features; names are matched after column-name normalization.
// A sink failure is logged and counted but does not fail the prediction.
func (s *Service) Predict(ctx context.Context, features map[string]float64) (domain.Prediction, error) {
	x, normalized, err := s.vector(features)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return domain.Prediction{}, err
	}

	start := time.Now()
	class, err := s.classifier.Predict(ctx, x)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return domain.Prediction{}, fmt.Errorf("classify: %w", err)
	}
	prob, err := s.classifier.PredictProbability(ctx, x)
	if err != nil {
		s.metrics.PredictionErrors.Inc()
		return domain.Prediction{}, fmt.Errorf("classify probability: %w", err)
	}
	s.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	label := domain.LabelNotFire
	if class == 1 {
		label = domain.LabelFire
	}
	p := domain.Prediction{
		ID:          uuid.NewString(),
		Label:       label,
		FireRisk:    label == domain.LabelFire,
		Probability: prob,
		Features:    normalized,
		PredictedAt: domain.Now().UTC(),
	}
	s.metrics.Predictions.WithLabelValues(p.Verdict()).Inc()

	s.logger.Info("prediction served",
		"id", p.ID,
		"verdict", p.Verdict(),
		"probability", p.Probability,
	)

	if s.sink != nil {
		if err := s.sink.Publish(ctx, p); err != nil {
			s.metrics.PredictionPublishErrors.Inc()
			s.logger.Warn("prediction publish failed", "id", p.ID, "error", err)
		}
	}
	return p, nil
}

// vector orders features into the classifier's input vector.
func (s *Service) vector(features map[string]float64) ([]float64, map[string]float64, error) {
	names := s.classifier.FeatureNames()

	normalized := make(map[string]float64, len(features))
	for k, v := range features {
		name := domain.NormalizeColumnName(k)
		if _, dup := normalized[name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate feature %q", ErrInvalidFeatures, name)
		}
		normalized[name] = v
	}

	var missing []string
	x := make([]float64, len(names))
	for i, name := range names {
		v, ok := normalized[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: %q is not a finite number", ErrInvalidFeatures, name)
		}
		if r, ok := s.bounds[name]; ok && (v < r.Min || v > r.Max) {
			return nil, nil, fmt.Errorf("%w: %q = %v not in [%v, %v]", ErrOutOfRange, name, v, r.Min, r.Max)
		}
		x[i] = v
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing %s", ErrInvalidFeatures, strings.Join(missing, ", "))
	}

	if len(normalized) != len(names) {
		known := make(map[string]bool, len(names))
		for _, n := range names {
			known[n] = true
		}
		var extra []string
		for k := range normalized {
			if !known[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return nil, nil, fmt.Errorf("%w: unexpected %s", ErrInvalidFeatures, strings.Join(extra, ", "))
	}
	return x, normalized, nil
}
