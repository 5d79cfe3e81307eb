package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// loading and fire-risk prediction.
type Metrics struct {
	// Dataset loading metrics.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,no_target,not_found,parse_error,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetRows         prometheus.Gauge
	LabelGaps           prometheus.Counter
	DatasetCache        *prometheus.CounterVec // labels: result={hit,miss}

	// Prediction metrics.
	Predictions             *prometheus.CounterVec // labels: verdict={fire,no_fire}
	PredictionErrors        prometheus.Counter
	PredictionDuration      prometheus.Histogram
	PredictionPublishErrors prometheus.Counter
	ClassifierEnabled       prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRows,
		m.LabelGaps,
		m.DatasetCache,
		m.Predictions,
		m.PredictionErrors,
		m.PredictionDuration,
		m.PredictionPublishErrors,
		m.ClassifierEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics without registering them, for
// command-line tools that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return NewMetricsForTesting()
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_risk",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a read-and-normalize cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_risk",
			Name:      "dataset_rows",
			Help:      "Rows in the most recently loaded dataset.",
		}),
		LabelGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "label_gaps_total",
			Help:      "Target values that normalized to a missing label.",
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "predictions_total",
			Help:      "Predictions served by verdict.",
		}, []string{"verdict"}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "prediction_errors_total",
			Help:      "Prediction requests that failed validation or inference.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_risk",
			Name:      "prediction_duration_seconds",
			Help:      "Classifier round-trip duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		PredictionPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_risk",
			Name:      "prediction_publish_errors_total",
			Help:      "Predictions that could not be published to the sink.",
		}),
		ClassifierEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_risk",
			Name:      "classifier_enabled",
			Help:      "1 when a classifier is configured, 0 otherwise.",
		}),
	}
}
