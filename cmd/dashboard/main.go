package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/fire-risk-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-risk-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/fire-risk-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/fire-risk-dashboard/internal/analysis"
	"github.com/couchcryptid/fire-risk-dashboard/internal/config"
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/model"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/couchcryptid/fire-risk-dashboard/internal/pipeline"
	"github.com/couchcryptid/fire-risk-dashboard/internal/prediction"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	readers := map[string]pipeline.TableReader{
		".csv":  csvfile.NewReader(),
		".xlsx": xlsx.NewReader(),
	}
	p := pipeline.New(readers, pipeline.NewTransformer(cfg.TargetAliases), logger, metrics)
	loader := pipeline.NewCachedLoader(p, cfg.DatasetCacheSize, metrics)
	session := pipeline.NewSession(loader, cfg.DatasetPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the cache. A fatal load leaves the service unready; the
	// dashboard retries on every request.
	ds, err := session.Dataset(ctx)
	if domain.IsFatal(err) {
		logger.Error("initial dataset load failed", "path", session.Path(), "error", err)
	}

	classifier, err := model.NewClassifier(cfg, logger)
	if err != nil {
		logger.Error("failed to load classifier", "error", err)
		os.Exit(1)
	}
	if !cfg.ClassifierEnabled() {
		logger.Warn("no classifier configured, predictions disabled")
	}

	var writer *kafkaadapter.Writer
	var predictor httpadapter.Predictor
	importances := model.DefaultImportances()
	if classifier != nil {
		metrics.ClassifierEnabled.Set(1)
		importances = model.ImportancesFor(classifier)

		var opts []prediction.Option
		if ds != nil {
			opts = append(opts, prediction.WithBounds(featureRanges(ds, classifier.FeatureNames(), logger)))
		}
		if cfg.KafkaEnabled {
			writer = kafkaadapter.NewWriter(cfg, logger)
			opts = append(opts, prediction.WithSink(writer))
			logger.Info("prediction sink enabled", "topic", cfg.KafkaPredictionTopic, "brokers", cfg.KafkaBrokers)
		}
		predictor = prediction.NewService(classifier, logger, metrics, opts...)
	}

	report, err := httpadapter.LoadReport(cfg.ReportPath)
	if err != nil {
		logger.Error("failed to load report", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		FeatureNames:   cfg.FeatureNames,
		Importances:    importances,
		Report:         report,
	}, p, session, predictor, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// featureRanges bounds prediction inputs by the values observed in ds.
// Features the dataset does not carry are left unbounded.
func featureRanges(ds *domain.Dataset, names []string, logger *slog.Logger) map[string]prediction.Range {
	ranges := make(map[string]prediction.Range, len(names))
	for _, name := range names {
		b, err := analysis.FeatureBounds(ds, []string{name})
		if err != nil {
			logger.Warn("feature not bounded", "feature", name, "error", err)
			continue
		}
		ranges[b[0].Name] = prediction.Range{Min: b[0].Min, Max: b[0].Max}
	}
	return ranges
}
