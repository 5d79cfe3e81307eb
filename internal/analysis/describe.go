package analysis

import (
	"math"
	"sort"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/montanaflynn/stats"
)

// ColumnStats is the descriptive summary of one numeric column. Statistics
// that are undefined for the column's values are nil.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"25%"`
	Median *float64 `json:"50%"`
	Q3     *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// Describe summarizes every numeric column, the target's 0/1 labels included.
// Std is the sample standard deviation; quartiles interpolate linearly
// between order statistics.
func Describe(ds *domain.Dataset) []ColumnStats {
	cols := ds.NumericColumns()
	out := make([]ColumnStats, 0, len(cols))
	for _, c := range cols {
		out = append(out, describeColumn(c.Name, c.Floats()))
	}
	return out
}

func describeColumn(name string, data []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(data)}
	if len(data) == 0 {
		return s
	}

	mean, _ := stats.Mean(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	s.Mean, s.Min, s.Max = ptr(mean), ptr(lo), ptr(hi)

	if len(data) > 1 {
		std, err := stats.StandardDeviationSample(data)
		if err == nil {
			s.Std = finite(std)
		}
	}

	sorted := sortedCopy(data)
	s.Q1 = ptr(quantile(sorted, 0.25))
	s.Median = ptr(quantile(sorted, 0.5))
	s.Q3 = ptr(quantile(sorted, 0.75))
	return s
}

// quantile interpolates linearly between the order statistics of sorted at
// rank p*(n-1).
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := math.Floor(pos)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (pos-lo)*(sorted[i+1]-sorted[i])
}

func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}

func ptr(f float64) *float64 { return &f }

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
