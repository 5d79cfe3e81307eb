package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelURL = "http://model.internal:9000"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Algerian_forest_fires_dataset.csv", cfg.DatasetPath)
	assert.Equal(t, []string{"classes", "class", "target", "fire", "label"}, cfg.TargetAliases)
	assert.Equal(t, []string{
		"day", "month", "year", "temperature", "rh", "ws", "rain",
		"ffmc", "dmc", "dc", "isi", "bui", "fwi",
	}, cfg.FeatureNames)
	assert.Equal(t, 8, cfg.DatasetCacheSize)
	assert.Empty(t, cfg.ModelArtifact)
	assert.Empty(t, cfg.ModelURL)
	assert.False(t, cfg.ClassifierEnabled())
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.ReportPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fire-risk-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATASET_PATH", "/data/fires.xlsx")
	t.Setenv("TARGET_ALIASES", "label, classes")
	t.Setenv("FEATURE_NAMES", "temperature,rh,ws")
	t.Setenv("DATASET_CACHE_SIZE", "2")
	t.Setenv("MODEL_URL", testModelURL)
	t.Setenv("MODEL_TIMEOUT", "750ms")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REPORT_PATH", "docs/report.md")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_PREDICTION_TOPIC", "custom-predictions")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/fires.xlsx", cfg.DatasetPath)
	assert.Equal(t, []string{"label", "classes"}, cfg.TargetAliases)
	assert.Equal(t, []string{"temperature", "rh", "ws"}, cfg.FeatureNames)
	assert.Equal(t, 2, cfg.DatasetCacheSize)
	assert.Equal(t, testModelURL, cfg.ModelURL)
	assert.True(t, cfg.ClassifierEnabled())
	assert.Equal(t, 750*time.Millisecond, cfg.ModelTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "docs/report.md", cfg.ReportPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-predictions", cfg.KafkaPredictionTopic)
}

func TestLoad_FeatureNamesNormalized(t *testing.T) {
	t.Setenv("FEATURE_NAMES", "Temperature, RH ,FFMC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"temperature", "rh", "ffmc"}, cfg.FeatureNames)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeModelTimeout(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT")
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	t.Setenv("DATASET_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATASET_CACHE_SIZE")
}

func TestLoad_EmptyDatasetPath(t *testing.T) {
	t.Setenv("DATASET_PATH", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATASET_PATH")
}

func TestLoad_EmptyAliases(t *testing.T) {
	t.Setenv("TARGET_ALIASES", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TARGET_ALIASES")
}

func TestLoad_ModelSourcesMutuallyExclusive(t *testing.T) {
	t.Setenv("MODEL_ARTIFACT", "model.json")
	t.Setenv("MODEL_URL", testModelURL)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoad_InvalidKafkaEnabled(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_ENABLED")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
