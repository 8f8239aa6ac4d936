package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineSamples(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return out
}

// TestPeriodEstimator_KnownSinusoid verifies the estimator recovers the
// frequency of a pure sine whose period divides the window exactly.
func TestPeriodEstimator_KnownSinusoid(t *testing.T) {
	// 8 cycles across 128 samples at dt=1: frequency 1/16, period 16
	values := sineSamples(1.0/16, 1, 128)

	est, err := NewPeriodEstimator().Estimate(values, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, est.DominantFrequency, 1e-9)
	assert.InDelta(t, 16, est.Period, 1e-6)
	assert.Greater(t, est.Power, 0.0)
	assert.False(t, est.NyquistLimited)
}

// TestPeriodEstimator_OffsetInvariant verifies mean removal: a constant
// offset must not move the dominant peak to the zero bin.
func TestPeriodEstimator_OffsetInvariant(t *testing.T) {
	values := sineSamples(1.0/16, 1, 128)
	for i := range values {
		values[i] += 100
	}

	est, err := NewPeriodEstimator().Estimate(values, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, est.DominantFrequency, 1e-9)
}

// TestPeriodEstimator_SampleSpacing verifies dt scales the reported
// frequency and period.
func TestPeriodEstimator_SampleSpacing(t *testing.T) {
	// Same 8-cycles-in-128-bins signal, but observed at dt=0.5
	values := sineSamples(1.0/16, 1, 128)

	est, err := NewPeriodEstimator().Estimate(values, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/8, est.DominantFrequency, 1e-9)
	assert.InDelta(t, 8, est.Period, 1e-6)
}

// TestPeriodEstimator_NyquistFlag verifies the alternating sequence pins the
// highest resolvable bin and is flagged.
func TestPeriodEstimator_NyquistFlag(t *testing.T) {
	values := make([]float64, 64)
	for i := range values {
		if i%2 == 0 {
			values[i] = 1
		} else {
			values[i] = -1
		}
	}

	est, err := NewPeriodEstimator().Estimate(values, 1)
	require.NoError(t, err)
	assert.True(t, est.NyquistLimited)
	assert.InDelta(t, 2, est.Period, 1e-9)
}

// TestPeriodEstimator_Validation verifies the rejection paths.
func TestPeriodEstimator_Validation(t *testing.T) {
	pe := NewPeriodEstimator()

	_, err := pe.Estimate([]float64{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = pe.Estimate(sineSamples(0.1, 1, 32), 0)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = pe.EstimateFromTimes([]float64{0, 1}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrTooShort)
}

// TestPeriodEstimator_FromTimes verifies dt derivation from a uniform grid.
func TestPeriodEstimator_FromTimes(t *testing.T) {
	n := 128
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * 0.25
	}
	values := sineSamples(1.0/16, 1, n) // one sample per grid point

	est, err := NewPeriodEstimator().EstimateFromTimes(times, values)
	require.NoError(t, err)
	// 16 samples per cycle at dt=0.25 means a period of 4 time units
	assert.InDelta(t, 4, est.Period, 1e-6)
}
