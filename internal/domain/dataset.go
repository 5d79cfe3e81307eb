package domain

import "fmt"

// RawTable is a delimited resource as read from disk: a header row and the
// records under it, all as text.
type RawTable struct {
	Source  string
	Header  []string
	Records [][]string
}

// ColumnKind describes how a column's values were interpreted.
type ColumnKind string

const (
	KindText    ColumnKind = "text"
	KindNumeric ColumnKind = "numeric"
	KindLabel   ColumnKind = "label"
)

// Value is one cell. Numeric and label cells carry Number; text cells carry
// only Text. Missing cells have Missing set and nothing else meaningful.
type Value struct {
	Text    string  `json:"text,omitempty"`
	Number  float64 `json:"number"`
	Missing bool    `json:"missing,omitempty"`
}

// Column is a named, typed sequence of cells in row order.
type Column struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Values []Value    `json:"-"`
}

// Numeric reports whether the column's values carry numbers.
func (c Column) Numeric() bool {
	return c.Kind == KindNumeric || c.Kind == KindLabel
}

// Floats returns the non-missing numbers of a numeric column in row order.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Number)
		}
	}
	return out
}

// Coercion records the outcome of the numeric conversion attempt for one column.
type Coercion struct {
	Column  string `json:"column"`
	Numeric bool   `json:"numeric"`
	// Row and Value identify the first cell that failed to parse.
	Row   int    `json:"row,omitempty"`
	Value string `json:"value,omitempty"`
}

// LabelGap is a target cell whose cleaned token is neither "fire" nor "notfire".
type LabelGap struct {
	Row   int    `json:"row"`
	Token string `json:"token"`
}

// Dataset is a normalized, analysis-ready table. It is treated as immutable
// once Normalize returns it.
type Dataset struct {
	Source    string
	Columns   []Column
	Target    string
	Coercions []Coercion
	LabelGaps []LabelGap

	rows  int
	index map[string]int
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// ColumnNames returns the normalized column names in file order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// HasTarget reports whether a target column was resolved.
func (d *Dataset) HasTarget() bool { return d.Target != "" }

// Column looks up a column by normalized name. The name itself is
// normalized first, so callers may pass raw header text.
func (d *Dataset) Column(name string) (Column, error) {
	i, ok := d.index[NormalizeColumnName(name)]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return d.Columns[i], nil
}

// Row returns row i as a column-name keyed map.
func (d *Dataset) Row(i int) map[string]Value {
	row := make(map[string]Value, len(d.Columns))
	for _, c := range d.Columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Labels returns the normalized labels of the target column, or nil if the
// dataset has no target.
func (d *Dataset) Labels() []Label {
	if !d.HasTarget() {
		return nil
	}
	col := d.Columns[d.index[d.Target]]
	labels := make([]Label, len(col.Values))
	for i, v := range col.Values {
		labels[i] = labelFromValue(v)
	}
	return labels
}

// NumericColumns returns every numeric column, the target's 0/1 labels included.
func (d *Dataset) NumericColumns() []Column {
	var out []Column
	for _, c := range d.Columns {
		if c.Numeric() {
			out = append(out, c)
		}
	}
	return out
}
