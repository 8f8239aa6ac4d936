package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// TestDescribe_KnownValues checks the summary fields on a small fixed set.
func TestDescribe_KnownValues(t *testing.T) {
	s, err := Describe([]float64{4, 1, 3, 2, 5})
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.Min, 1e-12)
	assert.InDelta(t, 5.0, s.Max, 1e-12)
	assert.InDelta(t, 4.0, s.Range, 1e-12)
	assert.InDelta(t, 3.0, s.Median, 1e-12)
	assert.Greater(t, s.StdDev, 0.0)
	assert.GreaterOrEqual(t, s.IQR, 0.0)
}

// TestDescribe_SinglePoint verifies the degenerate one-observation summary.
func TestDescribe_SinglePoint(t *testing.T) {
	s, err := Describe([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 7.0, s.Mean)
	assert.Zero(t, s.StdDev)
	assert.Zero(t, s.Range)
}

// TestDescribe_Empty verifies the empty-input rejection.
func TestDescribe_Empty(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, ErrEmptyData)
}

// TestZNormalize verifies zero mean and unit variance after normalization.
func TestZNormalize(t *testing.T) {
	out := ZNormalize([]float64{2, 4, 6, 8, 10})
	assert.InDelta(t, 0, stat.Mean(out, nil), 1e-12)
	assert.InDelta(t, 1, stat.StdDev(out, nil), 1e-12)
}

// TestZNormalize_Constant verifies a zero-spread sequence maps to zeros
// instead of NaNs.
func TestZNormalize_Constant(t *testing.T) {
	out := ZNormalize([]float64{3, 3, 3})
	assert.Equal(t, []float64{0, 0, 0}, out)

	assert.Empty(t, ZNormalize(nil))
}
