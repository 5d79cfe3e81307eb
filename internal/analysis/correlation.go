package analysis

import (
	"errors"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// ErrTooFewNumericColumns is returned when a correlation matrix would have
// fewer than two columns.
var ErrTooFewNumericColumns = errors.New("at least two numeric columns are required")

// CorrelationMatrix holds Pearson coefficients between numeric columns.
// Values[i][j] is nil when the pair has fewer than two complete rows or
// either side is constant over them.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// Correlation computes the Pearson matrix over every numeric column using
// pairwise complete observations.
func Correlation(ds *domain.Dataset) (CorrelationMatrix, error) {
	cols := ds.NumericColumns()
	if len(cols) < 2 {
		return CorrelationMatrix{}, ErrTooFewNumericColumns
	}

	m := CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]*float64, len(cols)),
	}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]*float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pearson(a, b domain.Column) *float64 {
	x := make([]float64, 0, len(a.Values))
	y := make([]float64, 0, len(b.Values))
	for i := range a.Values {
		if a.Values[i].Missing || b.Values[i].Missing {
			continue
		}
		x = append(x, a.Values[i].Number)
		y = append(y, b.Values[i].Number)
	}
	if len(x) < 2 {
		return nil
	}
	return finite(stat.Correlation(x, y, nil))
}
