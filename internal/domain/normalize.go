package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTargetAliases lists accepted target column names in priority order.
// Dashboard variants disagreed on this order; this one is authoritative here
// and can be overridden through Options.
var DefaultTargetAliases = []string{"classes", "class", "target", "fire", "label"}

// Options tunes Normalize.
type Options struct {
	// TargetAliases overrides DefaultTargetAliases when non-empty.
	TargetAliases []string
}

func (o Options) aliases() []string {
	if len(o.TargetAliases) == 0 {
		return DefaultTargetAliases
	}
	return o.TargetAliases
}

// NormalizeColumnName trims surrounding whitespace and lower-cases name.
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveTarget returns the first alias, in priority order, that names one of
// columns. Both sides are compared after normalization.
func ResolveTarget(columns, aliases []string) (string, error) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[NormalizeColumnName(c)] = true
	}
	for _, a := range aliases {
		a = NormalizeColumnName(a)
		if a != "" && present[a] {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %s", ErrNoTargetColumn, strings.Join(aliases, ", "))
}

// Normalize turns a raw table into a Dataset: normalized column names, the
// resolved target column with {0,1,missing} labels, and a numeric coercion
// attempt on every other column.
//
// If no target alias matches, Normalize returns the dataset together with an
// error wrapping ErrNoTargetColumn. Any other error is fatal and comes with a
// nil dataset.
func Normalize(raw RawTable, opts Options) (*Dataset, error) {
	if len(raw.Header) == 0 {
		return nil, &ParseError{Source: raw.Source, Err: errors.New("missing header row")}
	}

	ds := &Dataset{
		Source:  raw.Source,
		Columns: make([]Column, len(raw.Header)),
		rows:    len(raw.Records),
		index:   make(map[string]int, len(raw.Header)),
	}
	for i, h := range raw.Header {
		name := NormalizeColumnName(h)
		if _, dup := ds.index[name]; dup {
			return nil, &ParseError{Source: raw.Source, Line: 1, Err: fmt.Errorf("duplicate column %q after normalization", name)}
		}
		ds.index[name] = i
		ds.Columns[i] = Column{Name: name, Kind: KindText, Values: make([]Value, len(raw.Records))}
	}

	for r, rec := range raw.Records {
		if len(rec) != len(raw.Header) {
			return nil, &ParseError{
				Source: raw.Source,
				Line:   r + 2,
				Err:    fmt.Errorf("expected %d fields, got %d", len(raw.Header), len(rec)),
			}
		}
		for c, cell := range rec {
			ds.Columns[c].Values[r] = Value{Text: cell}
		}
	}

	target, targetErr := ResolveTarget(ds.ColumnNames(), opts.aliases())
	if targetErr == nil {
		ds.Target = target
		ds.LabelGaps = normalizeLabels(&ds.Columns[ds.index[target]])
	}

	for i := range ds.Columns {
		if ds.Columns[i].Name == ds.Target {
			continue
		}
		ds.Coercions = append(ds.Coercions, CoerceNumeric(&ds.Columns[i]))
	}

	return ds, targetErr
}

// normalizeLabels rewrites col in place as a label column and returns the
// rows whose tokens fell outside the known domain.
func normalizeLabels(col *Column) []LabelGap {
	var gaps []LabelGap
	col.Kind = KindLabel
	for i, v := range col.Values {
		token := CleanLabelToken(v.Text)
		label := NormalizeLabel(v.Text)
		col.Values[i] = label.value(token)
		if label == LabelMissing {
			gaps = append(gaps, LabelGap{Row: i, Token: token})
		}
	}
	return gaps
}
