package model

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewClassifier(&config.Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewClassifier(&config.Config{ModelArtifact: filepath.Join("testdata", "pipeline.json")}, logger)
	require.NoError(t, err)
	assert.IsType(t, &Pipeline{}, c)

	c, err = NewClassifier(&config.Config{
		ModelURL:     "http://model.internal:9000",
		ModelTimeout: time.Second,
		FeatureNames: []string{"temperature"},
	}, logger)
	require.NoError(t, err)
	require.IsType(t, &RemoteClassifier{}, c)
	assert.Equal(t, []string{"temperature"}, c.FeatureNames())

	_, err = NewClassifier(&config.Config{ModelArtifact: filepath.Join("testdata", "missing.json")}, logger)
	require.Error(t, err)
}
