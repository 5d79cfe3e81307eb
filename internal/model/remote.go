package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// RemoteClassifier implements domain.Classifier against an inference service
// that serves the exported model over HTTP.
type RemoteClassifier struct {
	baseURL    string
	features   []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRemoteClassifier creates a client for the inference service at baseURL.
// features is the order in which the served model expects its inputs.
func NewRemoteClassifier(baseURL string, features []string, timeout time.Duration, logger *slog.Logger) *RemoteClassifier {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = domain.NormalizeColumnName(f)
	}
	return &RemoteClassifier{
		baseURL:  strings.TrimRight(baseURL, "/"),
		features: names,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *RemoteClassifier) FeatureNames() []string {
	out := make([]string, len(c.features))
	copy(out, c.features)
	return out
}

// Predict returns the class index chosen by the served model.
func (c *RemoteClassifier) Predict(ctx context.Context, x []float64) (int, error) {
	var resp predictResponse
	if err := c.post(ctx, "/predict", x, &resp); err != nil {
		return 0, err
	}
	if resp.Prediction != 0 && resp.Prediction != 1 {
		return 0, fmt.Errorf("inference service returned class %d", resp.Prediction)
	}
	return resp.Prediction, nil
}

// PredictProbability returns the served model's probability of the fire class.
func (c *RemoteClassifier) PredictProbability(ctx context.Context, x []float64) (float64, error) {
	var resp probabilityResponse
	if err := c.post(ctx, "/predict_proba", x, &resp); err != nil {
		return 0, err
	}
	if resp.Probability < 0 || resp.Probability > 1 {
		return 0, fmt.Errorf("inference service returned probability %v", resp.Probability)
	}
	return resp.Probability, nil
}

func (c *RemoteClassifier) post(ctx context.Context, path string, x []float64, out any) error {
	if len(x) != len(c.features) {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), len(c.features))
	}

	body, err := json.Marshal(request{Features: x})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("inference request",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inference service error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Inference service wire types.

type request struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Prediction int `json:"prediction"`
}

type probabilityResponse struct {
	Probability float64 `json:"probability"`
}
