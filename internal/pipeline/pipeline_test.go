package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/couchcryptid/fire-risk-dashboard/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReader struct {
	table domain.RawTable
	err   error
	calls atomic.Int64
	paths []string
}

func (m *mockReader) ReadTable(_ context.Context, path string) (domain.RawTable, error) {
	m.calls.Add(1)
	m.paths = append(m.paths, path)
	if m.err != nil {
		return domain.RawTable{}, m.err
	}
	t := m.table
	t.Source = path
	return t, nil
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func fireTable() domain.RawTable {
	return domain.RawTable{
		Header: []string{"Temperature", " RH", "Classes  "},
		Records: [][]string{
			{"29", "57", "not fire   "},
			{"33", "54", "fire   "},
			{"30", "73", "fire"},
		},
	}
}

func newPipeline(csv, xlsx *mockReader, metrics *observability.Metrics) *pipeline.Pipeline {
	readers := map[string]pipeline.TableReader{".csv": csv}
	if xlsx != nil {
		readers[".xlsx"] = xlsx
	}
	return pipeline.New(readers, pipeline.NewTransformer(nil), slog.Default(), metrics)
}

// --- tests ---

func TestPipeline_Load_HappyPath(t *testing.T) {
	reader := &mockReader{table: fireTable()}
	metrics := newTestMetrics()
	p := newPipeline(reader, nil, metrics)

	require.Error(t, p.CheckReadiness(context.Background()))

	ds, err := p.Load(context.Background(), "fires.csv")
	require.NoError(t, err)
	require.NotNil(t, ds)

	assert.Equal(t, "classes", ds.Target)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []domain.Label{domain.LabelNotFire, domain.LabelFire, domain.LabelFire}, ds.Labels())
	assert.NoError(t, p.CheckReadiness(context.Background()))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("success")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.DatasetRows), 0)
}

func TestPipeline_Load_NoTargetIsRecoverable(t *testing.T) {
	reader := &mockReader{table: domain.RawTable{
		Header:  []string{"temperature", "region"},
		Records: [][]string{{"29", "bejaia"}, {"31", "sidi bel-abbes"}},
	}}
	metrics := newTestMetrics()
	p := newPipeline(reader, nil, metrics)

	ds, err := p.Load(context.Background(), "fires.csv")
	require.ErrorIs(t, err, domain.ErrNoTargetColumn)
	require.NotNil(t, ds)
	assert.False(t, ds.HasTarget())
	assert.Equal(t, 2, ds.Len())
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("no_target")), 0)
}

func TestPipeline_Load_LabelGapsCounted(t *testing.T) {
	table := fireTable()
	table.Records = append(table.Records, []string{"28", "79", "unknown"}, []string{"27", "77", ""})
	metrics := newTestMetrics()
	p := newPipeline(&mockReader{table: table}, nil, metrics)

	ds, err := p.Load(context.Background(), "fires.csv")
	require.NoError(t, err)
	assert.Len(t, ds.LabelGaps, 2)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.LabelGaps), 0)
}

func TestPipeline_Load_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		target  error
		outcome string
	}{
		{
			name:    "not found",
			err:     fmt.Errorf("open fires.csv: %w", domain.ErrResourceNotFound),
			target:  domain.ErrResourceNotFound,
			outcome: "not_found",
		},
		{
			name:    "parse",
			err:     &domain.ParseError{Source: "fires.csv", Line: 3, Err: errors.New("wrong number of fields")},
			target:  domain.ErrParse,
			outcome: "parse_error",
		},
		{
			name:    "other",
			err:     context.Canceled,
			target:  context.Canceled,
			outcome: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newTestMetrics()
			p := newPipeline(&mockReader{err: tt.err}, nil, metrics)

			ds, err := p.Load(context.Background(), "fires.csv")
			require.ErrorIs(t, err, tt.target)
			assert.Nil(t, ds)
			assert.Error(t, p.CheckReadiness(context.Background()))
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues(tt.outcome)), 0)
		})
	}
}

func TestPipeline_Load_StructuralErrorFromNormalize(t *testing.T) {
	reader := &mockReader{table: domain.RawTable{
		Header:  []string{"temp", "Temp", "classes"},
		Records: [][]string{{"1", "2", "fire"}},
	}}
	p := newPipeline(reader, nil, newTestMetrics())

	ds, err := p.Load(context.Background(), "fires.csv")
	require.ErrorIs(t, err, domain.ErrParse)
	assert.Nil(t, ds)
}

func TestPipeline_Load_SelectsReaderByExtension(t *testing.T) {
	csv := &mockReader{table: fireTable()}
	xlsx := &mockReader{table: fireTable()}
	p := newPipeline(csv, xlsx, newTestMetrics())

	_, err := p.Load(context.Background(), "data/fires.XLSX")
	require.NoError(t, err)
	_, err = p.Load(context.Background(), "data/fires.csv")
	require.NoError(t, err)
	_, err = p.Load(context.Background(), "data/fires.txt")
	require.NoError(t, err)

	assert.Equal(t, []string{"data/fires.XLSX"}, xlsx.paths)
	assert.Equal(t, []string{"data/fires.csv", "data/fires.txt"}, csv.paths)
}

func TestPipeline_Load_NoReaderRegistered(t *testing.T) {
	p := pipeline.New(map[string]pipeline.TableReader{}, pipeline.NewTransformer(nil), slog.Default(), newTestMetrics())

	_, err := p.Load(context.Background(), "fires.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reader registered")
}

func TestSession_Dataset(t *testing.T) {
	reader := &mockReader{table: fireTable()}
	p := newPipeline(reader, nil, newTestMetrics())
	s := pipeline.NewSession(p, "fires.csv")

	assert.Equal(t, "fires.csv", s.Path())

	ds, err := s.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fires.csv", ds.Source)
	assert.Equal(t, int64(1), reader.calls.Load())
}
