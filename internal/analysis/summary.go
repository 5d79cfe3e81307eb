// Package analysis computes the presentation-facing statistics of a loaded
// dataset: class balance, descriptive statistics, correlations, value
// distributions and the bounds of classifier features.
package analysis

import (
	"errors"
	"sort"
	"strconv"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// ErrNoTarget is returned by operations that need a resolved target column.
var ErrNoTarget = errors.New("dataset has no target column")

// ClassCount is one row of the class distribution table.
type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// ClassSummary is the binary fire/no-fire breakdown of the target column.
// Rows whose label is missing are counted separately and excluded from both
// classes.
type ClassSummary struct {
	Target  string       `json:"target"`
	Total   int          `json:"total"`
	Fire    int          `json:"fire"`
	NoFire  int          `json:"no_fire"`
	Missing int          `json:"missing"`
	Classes []ClassCount `json:"classes"`
}

// ClassDistribution counts normalized labels.
func ClassDistribution(ds *domain.Dataset) (ClassSummary, error) {
	if !ds.HasTarget() {
		return ClassSummary{}, ErrNoTarget
	}

	s := ClassSummary{Target: ds.Target, Total: ds.Len()}
	for _, l := range ds.Labels() {
		switch l {
		case domain.LabelFire:
			s.Fire++
		case domain.LabelNotFire:
			s.NoFire++
		default:
			s.Missing++
		}
	}
	s.Classes = []ClassCount{
		{Class: domain.LabelFire.String(), Count: s.Fire},
		{Class: domain.LabelNotFire.String(), Count: s.NoFire},
	}
	return s, nil
}

// ValueCount is the number of rows holding one distinct raw value.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// RawValueCounts counts distinct values of column, most frequent first and
// ties broken by value. Missing cells are not counted.
func RawValueCounts(ds *domain.Dataset, column string) ([]ValueCount, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		counts[cellText(col, v)]++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// FallbackColumn picks the column whose raw values stand in for the class
// table when no target column exists: the first text column, else the last
// column. It returns "" for a dataset without columns.
func FallbackColumn(ds *domain.Dataset) string {
	for _, c := range ds.Columns {
		if c.Kind == domain.KindText {
			return c.Name
		}
	}
	if len(ds.Columns) == 0 {
		return ""
	}
	return ds.Columns[len(ds.Columns)-1].Name
}

func cellText(col domain.Column, v domain.Value) string {
	if col.Kind == domain.KindNumeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}
