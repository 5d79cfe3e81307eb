package analysis

import (
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// DefaultHeadRows is the number of rows Overview returns when n <= 0.
const DefaultHeadRows = 5

// ColumnInfo describes one column of the dataset.
type ColumnInfo struct {
	Name string            `json:"name"`
	Kind domain.ColumnKind `json:"kind"`
}

// DatasetOverview is the dataset's shape and its first rows.
type DatasetOverview struct {
	Source  string           `json:"source"`
	Rows    int              `json:"rows"`
	Columns []ColumnInfo     `json:"columns"`
	Target  string           `json:"target,omitempty"`
	Head    []map[string]any `json:"head"`
}

// Overview returns the dataset shape and its first n rows. Numeric and label
// cells render as numbers, text cells as strings and missing cells as null.
func Overview(ds *domain.Dataset, n int) DatasetOverview {
	if n <= 0 {
		n = DefaultHeadRows
	}
	n = min(n, ds.Len())

	o := DatasetOverview{
		Source:  ds.Source,
		Rows:    ds.Len(),
		Columns: make([]ColumnInfo, len(ds.Columns)),
		Target:  ds.Target,
		Head:    make([]map[string]any, n),
	}
	for i, c := range ds.Columns {
		o.Columns[i] = ColumnInfo{Name: c.Name, Kind: c.Kind}
	}
	for r := 0; r < n; r++ {
		values := ds.Row(r)
		row := make(map[string]any, len(values))
		for _, c := range ds.Columns {
			row[c.Name] = cell(c, values[c.Name])
		}
		o.Head[r] = row
	}
	return o
}

func cell(c domain.Column, v domain.Value) any {
	switch {
	case v.Missing:
		return nil
	case c.Numeric():
		return v.Number
	default:
		return v.Text
	}
}
