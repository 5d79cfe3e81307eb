package analysis

import (
	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/montanaflynn/stats"
)

// FeatureBound is the observed range of one classifier feature. The
// prediction form uses Min and Max as input bounds and Mean as the default.
type FeatureBound struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// FeatureBounds returns the bounds of each named feature in the given order.
// Every feature must be a numeric column with at least one value.
func FeatureBounds(ds *domain.Dataset, names []string) ([]FeatureBound, error) {
	out := make([]FeatureBound, 0, len(names))
	for _, name := range names {
		col, data, err := numericValues(ds, name)
		if err != nil {
			return nil, err
		}
		lo, _ := stats.Min(data)
		hi, _ := stats.Max(data)
		mean, _ := stats.Mean(data)
		out = append(out, FeatureBound{Name: col.Name, Min: lo, Max: hi, Mean: mean})
	}
	return out, nil
}
