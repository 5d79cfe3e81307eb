package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
)

// TableReader reads a tabular resource into a raw table.
type TableReader interface {
	ReadTable(ctx context.Context, path string) (domain.RawTable, error)
}

// Transformer turns a raw table into a normalized dataset.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawTable) (*domain.Dataset, error)
}

// Loader loads and normalizes the dataset at path. A dataset without a target
// column comes back together with an error wrapping domain.ErrNoTargetColumn.
type Loader interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}

// Pipeline orchestrates the read-normalize sequence for one resource.
type Pipeline struct {
	readers     map[string]TableReader
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline. readers is keyed by lower-case file extension
// (".csv", ".xlsx"); resources with other extensions go to the ".csv" reader.
func New(readers map[string]TableReader, t Transformer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		readers:     readers,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a dataset has been loaded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no dataset has been loaded yet")
	}
	return nil
}

// Load reads path and normalizes it.
func (p *Pipeline) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	start := time.Now()
	defer func() { p.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds()) }()

	reader, err := p.readerFor(path)
	if err != nil {
		p.recordFailure(path, err)
		return nil, err
	}

	raw, err := reader.ReadTable(ctx, path)
	if err != nil {
		p.recordFailure(path, err)
		return nil, err
	}

	ds, err := p.transformer.Transform(ctx, raw)
	if domain.IsFatal(err) {
		p.recordFailure(path, err)
		return nil, err
	}

	p.report(ds)

	if err != nil {
		p.metrics.DatasetLoads.WithLabelValues("no_target").Inc()
		p.logger.Warn("dataset has no target column, binary summaries unavailable",
			"path", path,
			"columns", ds.ColumnNames(),
		)
	} else {
		p.metrics.DatasetLoads.WithLabelValues("success").Inc()
	}
	p.ready.Store(true)
	return ds, err
}

func (p *Pipeline) readerFor(path string) (TableReader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if r, ok := p.readers[ext]; ok {
		return r, nil
	}
	if r, ok := p.readers[".csv"]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("no reader registered for %q", ext)
}

// report logs the decisions taken while normalizing ds.
func (p *Pipeline) report(ds *domain.Dataset) {
	p.metrics.DatasetRows.Set(float64(ds.Len()))
	p.metrics.LabelGaps.Add(float64(len(ds.LabelGaps)))

	for _, c := range ds.Coercions {
		if c.Numeric {
			p.logger.Debug("column coerced to numeric", "column", c.Column)
			continue
		}
		p.logger.Info("column kept as text",
			"column", c.Column,
			"row", c.Row,
			"value", c.Value,
		)
	}

	if len(ds.LabelGaps) > 0 {
		p.logger.Warn("target values outside fire/notfire, labels left missing",
			"target", ds.Target,
			"count", len(ds.LabelGaps),
			"first_row", ds.LabelGaps[0].Row,
			"first_token", ds.LabelGaps[0].Token,
		)
	}

	p.logger.Info("dataset loaded",
		"path", ds.Source,
		"rows", ds.Len(),
		"columns", len(ds.Columns),
		"target", ds.Target,
	)
}

func (p *Pipeline) recordFailure(path string, err error) {
	outcome := "error"
	switch {
	case errors.Is(err, domain.ErrResourceNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrParse):
		outcome = "parse_error"
	}
	p.metrics.DatasetLoads.WithLabelValues(outcome).Inc()
	p.logger.Error("dataset load failed", "path", path, "outcome", outcome, "error", err)
}

// Session binds a Loader to the resource a process was started with.
type Session struct {
	loader Loader
	path   string
}

// NewSession creates a Session for path.
func NewSession(loader Loader, path string) *Session {
	return &Session{loader: loader, path: path}
}

// Path returns the session's resource path.
func (s *Session) Path() string { return s.path }

// LoadedAt reports when the session's dataset was loaded, when the loader
// keeps that record (see CachedLoader).
func (s *Session) LoadedAt() (time.Time, bool) {
	lt, ok := s.loader.(interface {
		LoadedAt(path string) (time.Time, bool)
	})
	if !ok {
		return time.Time{}, false
	}
	return lt.LoadedAt(s.path)
}

// Dataset loads the session's dataset. See Loader for the error contract.
func (s *Session) Dataset(ctx context.Context) (*domain.Dataset, error) {
	return s.loader.Load(ctx, s.path)
}
