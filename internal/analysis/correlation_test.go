package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelation(t *testing.T) {
	ds := newDataset(t,
		[]string{"a", "b", "c", "const"},
		[]string{"1", "2", "4", "7"},
		[]string{"2", "4", "3", "7"},
		[]string{"3", "6", "2", "7"},
		[]string{"4", "NA", "1", "7"},
	)

	m, err := Correlation(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "const"}, m.Columns)
	require.Len(t, m.Values, 4)

	require.NotNil(t, m.Values[0][0])
	assert.InDelta(t, 1, *m.Values[0][0], 1e-9)

	require.NotNil(t, m.Values[0][1])
	assert.InDelta(t, 1, *m.Values[0][1], 1e-9, "pairwise complete rows only")

	require.NotNil(t, m.Values[0][2])
	assert.InDelta(t, -1, *m.Values[0][2], 1e-9)
	assert.Equal(t, *m.Values[0][2], *m.Values[2][0])

	assert.Nil(t, m.Values[0][3], "constant column has no defined correlation")
	assert.Nil(t, m.Values[3][3])
}

func TestCorrelation_TooFewColumns(t *testing.T) {
	ds := newDataset(t, []string{"a", "region"}, []string{"1", "north"})

	_, err := Correlation(ds)
	assert.ErrorIs(t, err, ErrTooFewNumericColumns)
}

func TestCorrelation_IncludesLabels(t *testing.T) {
	ds := newDataset(t,
		[]string{"ffmc", "classes"},
		[]string{"50", "not fire"},
		[]string{"90", "fire"},
		[]string{"85", "fire"},
	)

	m, err := Correlation(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"ffmc", "classes"}, m.Columns)
	require.NotNil(t, m.Values[0][1])
	assert.Greater(t, *m.Values[0][1], 0.9)
}
