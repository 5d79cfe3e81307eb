package model

import (
	"log/slog"

	"github.com/couchcryptid/fire-risk-dashboard/internal/config"
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// NewClassifier builds the classifier selected by cfg: the local artifact when
// MODEL_ARTIFACT is set, the remote service when MODEL_URL is set, and nil
// when neither is configured.
func NewClassifier(cfg *config.Config, logger *slog.Logger) (domain.Classifier, error) {
	switch {
	case cfg.ModelArtifact != "":
		p, err := LoadPipeline(cfg.ModelArtifact)
		if err != nil {
			return nil, err
		}
		logger.Info("classifier loaded", "source", "artifact", "path", cfg.ModelArtifact, "features", len(p.FeatureNames()))
		return p, nil
	case cfg.ModelURL != "":
		logger.Info("classifier loaded", "source", "remote", "url", cfg.ModelURL, "timeout", cfg.ModelTimeout)
		return NewRemoteClassifier(cfg.ModelURL, cfg.FeatureNames, cfg.ModelTimeout, logger), nil
	default:
		logger.Info("no classifier configured, predictions disabled")
		return nil, nil
	}
}
