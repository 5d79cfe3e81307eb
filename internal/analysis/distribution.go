package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultBins is the histogram bin count used when none is requested.
	DefaultBins = 30

	// MaxBins caps the bin count a caller may request.
	MaxBins = 1000
)

var (
	// ErrNotNumeric is returned for distribution requests on a text column.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrNoValues is returned when a column has no non-missing values.
	ErrNoValues = errors.New("column has no values")

	// ErrInvalidBins is returned for a bin count above MaxBins.
	ErrInvalidBins = errors.New("invalid bin count")
)

// Bin is one half-open histogram interval [Lower, Upper). The last bin of a
// histogram also includes its upper edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// HistogramResult is the equal-width histogram of one numeric column.
type HistogramResult struct {
	Column  string `json:"column"`
	Count   int    `json:"count"`
	Missing int    `json:"missing"`
	Bins    []Bin  `json:"bins"`
}

// Histogram bins the non-missing values of column into equal-width intervals
// spanning their range. bins <= 0 selects DefaultBins; more than MaxBins is
// an error. A constant column yields a single unit-width bin centred on the
// value.
func Histogram(ds *domain.Dataset, column string, bins int) (HistogramResult, error) {
	switch {
	case bins <= 0:
		bins = DefaultBins
	case bins > MaxBins:
		return HistogramResult{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidBins, bins, MaxBins)
	}
	col, data, err := numericValues(ds, column)
	if err != nil {
		return HistogramResult{}, err
	}

	x := sortedCopy(data)
	lo, hi := x[0], x[len(x)-1]

	var dividers []float64
	if lo == hi {
		dividers = []float64{lo - 0.5, lo + 0.5}
	} else {
		dividers = floats.Span(make([]float64, bins+1), lo, hi)
		dividers[bins] = hi
	}
	edges := make([]float64, len(dividers))
	copy(edges, dividers)
	// stat.Histogram treats the last divider as exclusive.
	dividers[len(dividers)-1] = math.Nextafter(dividers[len(dividers)-1], math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	h := HistogramResult{
		Column:  col.Name,
		Count:   len(x),
		Missing: len(col.Values) - len(x),
		Bins:    make([]Bin, len(counts)),
	}
	for i, n := range counts {
		h.Bins[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(n)}
	}
	return h, nil
}

// BoxPlotResult is the five-number summary of a numeric column with Tukey
// whiskers at 1.5 times the interquartile range.
type BoxPlotResult struct {
	Column       string    `json:"column"`
	Count        int       `json:"count"`
	Mean         float64   `json:"mean"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	IQR          float64   `json:"iqr"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// BoxPlot computes the box-and-whisker summary of column. Whiskers end at the
// most extreme values inside the fences; values beyond them are outliers.
func BoxPlot(ds *domain.Dataset, column string) (BoxPlotResult, error) {
	col, data, err := numericValues(ds, column)
	if err != nil {
		return BoxPlotResult{}, err
	}

	x := sortedCopy(data)
	mean, err := stats.Mean(x)
	if err != nil {
		return BoxPlotResult{}, fmt.Errorf("mean of %s: %w", col.Name, err)
	}

	b := BoxPlotResult{
		Column:   col.Name,
		Count:    len(x),
		Mean:     mean,
		Q1:       quantile(x, 0.25),
		Median:   quantile(x, 0.5),
		Q3:       quantile(x, 0.75),
		Outliers: []float64{},
	}
	b.IQR = b.Q3 - b.Q1
	lowerFence := b.Q1 - 1.5*b.IQR
	upperFence := b.Q3 + 1.5*b.IQR

	b.LowerWhisker, b.UpperWhisker = b.Q1, b.Q3
	for _, v := range x {
		if v < lowerFence || v > upperFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.LowerWhisker = math.Min(b.LowerWhisker, v)
		b.UpperWhisker = math.Max(b.UpperWhisker, v)
	}
	return b, nil
}

func numericValues(ds *domain.Dataset, column string) (domain.Column, []float64, error) {
	col, err := ds.Column(column)
	if err != nil {
		return domain.Column{}, nil, err
	}
	if !col.Numeric() {
		return domain.Column{}, nil, fmt.Errorf("%w: %q", ErrNotNumeric, col.Name)
	}
	data := col.Floats()
	if len(data) == 0 {
		return domain.Column{}, nil, fmt.Errorf("%w: %q", ErrNoValues, col.Name)
	}
	return col, data, nil
}
