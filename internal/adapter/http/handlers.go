package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/analysis"
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/model"
	"github.com/couchcryptid/fire-risk-dashboard/internal/prediction"
	"github.com/go-chi/chi/v5"
)

const maxPredictBody = 64 << 10

type summaryResponse struct {
	Binary  bool                   `json:"binary"`
	Summary *analysis.ClassSummary `json:"summary,omitempty"`
	// Fallback view when no target column exists.
	Message     string                `json:"message,omitempty"`
	Column      string                `json:"column,omitempty"`
	ValueCounts []analysis.ValueCount `json:"value_counts,omitempty"`
}

// datasetResponse adds the load time of the cached dataset to its overview.
type datasetResponse struct {
	analysis.DatasetOverview
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

type featuresResponse struct {
	ClassifierEnabled bool                    `json:"classifier_enabled"`
	Features          []analysis.FeatureBound `json:"features"`
}

type importanceResponse struct {
	Importances []model.Importance `json:"importances"`
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

// dataset loads the session dataset, writing an error response when the
// load is fatal. A missing target column is not an error here.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*domain.Dataset, bool) {
	ds, err := s.data.Dataset(r.Context())
	if !domain.IsFatal(err) {
		return ds, true
	}
	s.logger.Error("dataset unavailable", "error", err)
	switch {
	case errors.Is(err, domain.ErrResourceNotFound):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return nil, false
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	if ds.HasTarget() {
		sum, err := analysis.ClassDistribution(ds)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse{Binary: true, Summary: &sum})
		return
	}

	resp := summaryResponse{Message: "no class/target column found in dataset"}
	if col := analysis.FallbackColumn(ds); col != "" {
		counts, err := analysis.RawValueCounts(ds, col)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Column, resp.ValueCounts = col, counts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	resp := datasetResponse{DatasetOverview: analysis.Overview(ds, limit)}
	if lt, ok := s.data.(LoadTimer); ok {
		if at, ok := lt.LoadedAt(); ok {
			resp.LoadedAt = &at
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.Describe(ds))
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	m, err := analysis.Correlation(ds)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	bins, ok := intParam(w, r, "bins")
	if !ok {
		return
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	h, err := analysis.Histogram(ds, chi.URLParam(r, "column"), bins)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleBoxPlot(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	b, err := analysis.BoxPlot(ds, chi.URLParam(r, "column"))
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	names := s.opts.FeatureNames
	if s.predictor != nil {
		names = s.predictor.FeatureNames()
	}
	bounds, err := analysis.FeatureBounds(ds, names)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, featuresResponse{
		ClassifierEnabled: s.predictor != nil,
		Features:          bounds,
	})
}

func (s *Server) handleImportance(w http.ResponseWriter, _ *http.Request) {
	imp := s.opts.Importances
	if len(imp) == 0 {
		imp = model.DefaultImportances()
	}
	writeJSON(w, http.StatusOK, importanceResponse{Importances: imp})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "no classifier configured")
		return
	}

	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := s.predictor.Predict(r.Context(), req.Features)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, p)
	case errors.Is(err, prediction.ErrInvalidFeatures), errors.Is(err, prediction.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("prediction failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrInvalidBins):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnknownColumn):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrNotNumeric),
		errors.Is(err, analysis.ErrNoValues),
		errors.Is(err, analysis.ErrTooFewNumericColumns):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// intParam parses an optional non-negative integer query parameter. Absent
// parameters yield 0.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}
