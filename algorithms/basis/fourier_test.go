package basis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewFourier_Validation verifies count and domain constraints.
func TestNewFourier_Validation(t *testing.T) {
	_, err := NewFourier(0, 1, 4)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFourier(0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFourier(1, 1, 5)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFourier(2, -1, 5)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	f, err := NewFourier(0, 2*math.Pi, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, f.Count())
	assert.Equal(t, 2, f.Harmonics())
	assert.Equal(t, Fourier, f.Family())
}

// TestFourierBasis_Evaluate verifies known trigonometric values on [0, 2π].
func TestFourierBasis_Evaluate(t *testing.T) {
	f, err := NewFourier(0, 2*math.Pi, 5)
	require.NoError(t, err)

	row, err := f.Evaluate(0)
	require.NoError(t, err)
	require.Len(t, row, 5)
	expected := []float64{1, 0, 1, 0, 1}
	for i := range expected {
		assert.InDelta(t, expected[i], row[i], 1e-12)
	}

	row, err = f.Evaluate(math.Pi / 2)
	require.NoError(t, err)
	expected = []float64{1, 1, 0, 0, -1}
	for i := range expected {
		assert.InDelta(t, expected[i], row[i], 1e-12)
	}
}

// TestFourierBasis_DomainBounds verifies out-of-domain evaluation fails while
// the endpoints themselves evaluate.
func TestFourierBasis_DomainBounds(t *testing.T) {
	f, err := NewFourier(0, 2*math.Pi, 3)
	require.NoError(t, err)

	_, err = f.Evaluate(-0.1)
	assert.ErrorIs(t, err, ErrOutOfDomain)

	_, err = f.Evaluate(2*math.Pi + 0.1)
	assert.ErrorIs(t, err, ErrOutOfDomain)

	_, err = f.Evaluate(2 * math.Pi)
	assert.NoError(t, err)

	_, err = f.Derivative(-0.1, 1)
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

// TestFourierBasis_DerivativeAnalytic verifies first and second derivatives
// against hand-derived trigonometric identities.
func TestFourierBasis_DerivativeAnalytic(t *testing.T) {
	f, err := NewFourier(0, 2*math.Pi, 5)
	require.NoError(t, err)

	u := 0.7
	first, err := f.Derivative(u, 1)
	require.NoError(t, err)
	expected := []float64{0, math.Cos(u), -math.Sin(u), 2 * math.Cos(2*u), -2 * math.Sin(2*u)}
	for i := range expected {
		assert.InDelta(t, expected[i], first[i], 1e-12)
	}

	second, err := f.Derivative(u, 2)
	require.NoError(t, err)
	expected = []float64{0, -math.Sin(u), -math.Cos(u), -4 * math.Sin(2*u), -4 * math.Cos(2*u)}
	for i := range expected {
		assert.InDelta(t, expected[i], second[i], 1e-12)
	}

	_, err = f.Derivative(u, -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestFourierBasis_DerivativeOrderZero verifies order 0 matches Evaluate.
func TestFourierBasis_DerivativeOrderZero(t *testing.T) {
	f, err := NewFourier(-1, 3, 7)
	require.NoError(t, err)

	plain, err := f.Evaluate(1.25)
	require.NoError(t, err)
	zeroth, err := f.Derivative(1.25, 0)
	require.NoError(t, err)
	assert.Equal(t, plain, zeroth)
}

// TestFourierBasis_PenaltyMatrixDiagonal verifies the exact diagonal penalty
// structure on a unit-frequency domain.
func TestFourierBasis_PenaltyMatrixDiagonal(t *testing.T) {
	f, err := NewFourier(0, 2*math.Pi, 5)
	require.NoError(t, err)

	R := f.PenaltyMatrix()
	r, c := R.Dims()
	require.Equal(t, 5, r)
	require.Equal(t, 5, c)

	// ω = 1, period 2π: pair r contributes r⁴·π
	assert.InDelta(t, 0, R.At(0, 0), 1e-12)
	assert.InDelta(t, math.Pi, R.At(1, 1), 1e-9)
	assert.InDelta(t, math.Pi, R.At(2, 2), 1e-9)
	assert.InDelta(t, 16*math.Pi, R.At(3, 3), 1e-9)
	assert.InDelta(t, 16*math.Pi, R.At(4, 4), 1e-9)

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i != j {
				assert.InDelta(t, 0, R.At(i, j), 1e-12)
			}
		}
	}
}

// TestFourierBasis_EvaluateVec verifies design-matrix dimensions and row
// consistency with pointwise evaluation.
func TestFourierBasis_EvaluateVec(t *testing.T) {
	f, err := NewFourier(0, 10, 3)
	require.NoError(t, err)

	times := []float64{0, 2.5, 5, 10}
	phi, err := f.EvaluateVec(times)
	require.NoError(t, err)

	r, c := phi.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)

	row, err := f.Evaluate(5)
	require.NoError(t, err)
	for j := range row {
		assert.InDelta(t, row[j], phi.At(2, j), 1e-15)
	}

	_, err = f.EvaluateVec(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = f.EvaluateVec([]float64{0, 11})
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

// TestParseFamily verifies the accepted family spellings.
func TestParseFamily(t *testing.T) {
	for _, name := range []string{"fourier", "periodic", "Fourier"} {
		fam, err := ParseFamily(name)
		require.NoError(t, err)
		assert.Equal(t, Fourier, fam)
	}
	for _, name := range []string{"bspline", "b-spline", "piecewise-polynomial"} {
		fam, err := ParseFamily(name)
		require.NoError(t, err)
		assert.Equal(t, BSpline, fam)
	}

	_, err := ParseFamily("wavelet")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, "fourier", Fourier.String())
	assert.Equal(t, "bspline", BSpline.String())
}
