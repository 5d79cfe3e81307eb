package model

import (
	"sort"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// Importance is the relative contribution of one feature to the model.
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"importance"`
}

// DefaultImportances is the importance table of the reference random-forest
// model, shown when the loaded classifier does not provide its own.
func DefaultImportances() []Importance {
	return []Importance{
		{Feature: "ffmc", Score: 0.21},
		{Feature: "dmc", Score: 0.18},
		{Feature: "isi", Score: 0.13},
		{Feature: "fwi", Score: 0.11},
		{Feature: "temperature", Score: 0.09},
		{Feature: "rh", Score: 0.07},
		{Feature: "ws", Score: 0.06},
		{Feature: "bui", Score: 0.05},
		{Feature: "dc", Score: 0.04},
		{Feature: "month", Score: 0.03},
		{Feature: "day", Score: 0.02},
		{Feature: "rain", Score: 0.01},
		{Feature: "year", Score: 0.01},
	}
}

// ImportancesFromMap converts a feature to score map into a table sorted by
// descending score, ties broken by feature name.
func ImportancesFromMap(m map[string]float64) []Importance {
	out := make([]Importance, 0, len(m))
	for f, s := range m {
		out = append(out, Importance{Feature: domain.NormalizeColumnName(f), Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// ImportanceSource is implemented by classifiers that carry their own
// importance table.
type ImportanceSource interface {
	Importances() []Importance
}

// ImportancesFor returns c's importances when it provides a non-empty table,
// else DefaultImportances.
func ImportancesFor(c domain.Classifier) []Importance {
	if src, ok := c.(ImportanceSource); ok {
		if imp := src.Importances(); len(imp) > 0 {
			return imp
		}
	}
	return DefaultImportances()
}
