package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetPath      string
	TargetAliases    []string
	FeatureNames     []string
	DatasetCacheSize int

	// Classifier configuration. At most one of ModelArtifact and ModelURL is set.
	ModelArtifact string
	ModelURL      string
	ModelTimeout  time.Duration

	HTTPAddr           string
	CORSAllowedOrigins []string
	ReportPath         string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration

	// Prediction sink configuration.
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaPredictionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	modelTimeout, err := parseDuration("MODEL_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("DATASET_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KAFKA_ENABLED %q", v)
		}
	}

	cfg := &Config{
		DatasetPath:      envOrDefault("DATASET_PATH", "Algerian_forest_fires_dataset.csv"),
		TargetAliases:    parseList(envOrDefault("TARGET_ALIASES", strings.Join(domain.DefaultTargetAliases, ","))),
		FeatureNames:     columnNames(parseList(envOrDefault("FEATURE_NAMES", strings.Join(domain.DefaultFeatureNames, ",")))),
		DatasetCacheSize: cacheSize,

		ModelArtifact: os.Getenv("MODEL_ARTIFACT"),
		ModelURL:      os.Getenv("MODEL_URL"),
		ModelTimeout:  modelTimeout,

		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: parseList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		ReportPath:         os.Getenv("REPORT_PATH"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,

		KafkaEnabled:         kafkaEnabled,
		KafkaBrokers:         parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaPredictionTopic: envOrDefault("KAFKA_PREDICTION_TOPIC", "fire-risk-predictions"),
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if len(cfg.TargetAliases) == 0 {
		return nil, errors.New("TARGET_ALIASES must name at least one column")
	}
	if len(cfg.FeatureNames) == 0 {
		return nil, errors.New("FEATURE_NAMES must name at least one column")
	}
	if cfg.ModelArtifact != "" && cfg.ModelURL != "" {
		return nil, errors.New("MODEL_ARTIFACT and MODEL_URL are mutually exclusive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaPredictionTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_PREDICTION_TOPIC is empty")
	}

	return cfg, nil
}

// ClassifierEnabled reports whether a model source is configured.
func (c *Config) ClassifierEnabled() bool {
	return c.ModelArtifact != "" || c.ModelURL != ""
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// columnNames normalizes names the way dataset headers are normalized.
func columnNames(names []string) []string {
	for i, n := range names {
		names[i] = domain.NormalizeColumnName(n)
	}
	return names
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
