package pipeline

import (
	"context"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

// DatasetTransformer implements Transformer using the domain normalization
// rules with a configurable target alias priority.
type DatasetTransformer struct {
	opts domain.Options
}

// NewTransformer creates a DatasetTransformer. Empty aliases select
// domain.DefaultTargetAliases.
func NewTransformer(aliases []string) *DatasetTransformer {
	return &DatasetTransformer{opts: domain.Options{TargetAliases: aliases}}
}

func (t *DatasetTransformer) Transform(_ context.Context, raw domain.RawTable) (*domain.Dataset, error) {
	return domain.Normalize(raw, t.opts)
}
