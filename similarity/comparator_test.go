package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/common"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/warping"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

func sineSeries(t *testing.T, phase float64, n int) *timeseries.TimeSeries {
	t.Helper()
	times := common.Linspace(0, 4*math.Pi, n)
	values := make([]float64, n)
	for i, tm := range times {
		values[i] = math.Sin(tm + phase)
	}
	ts, err := timeseries.New(times, values)
	require.NoError(t, err)
	return ts
}

func noisySeries(t *testing.T, n int) *timeseries.TimeSeries {
	t.Helper()
	times := common.Linspace(0, 4*math.Pi, n)
	values := make([]float64, n)
	for i := range values {
		// Deterministic jagged sequence unlike any sine
		values[i] = float64((i*7)%5) - 2
	}
	ts, err := timeseries.New(times, values)
	require.NoError(t, err)
	return ts
}

// TestComparator_IdenticalSeries verifies an exact match scores 1 with an
// excellent grade.
func TestComparator_IdenticalSeries(t *testing.T) {
	ts := sineSeries(t, 0, 50)

	result, err := NewCurveComparator().CompareSeries(ts, ts)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Similarity, 1e-12)
	assert.Zero(t, result.NormalizedDistance)
	assert.Equal(t, GradeExcellent, result.MatchGrade)
	assert.Contains(t, result.Quality, "diagonal_ratio")
}

// TestComparator_NormalizationAbsorbsScale verifies that with Normalize set
// an amplitude-scaled copy still matches exactly.
func TestComparator_NormalizationAbsorbsScale(t *testing.T) {
	ts := sineSeries(t, 0, 50)
	scaled := make([]float64, ts.Len())
	for i, v := range ts.Values() {
		scaled[i] = 3*v + 10
	}
	other, err := timeseries.New(ts.Times(), scaled)
	require.NoError(t, err)

	result, err := NewCurveComparator().CompareSeries(ts, other)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)

	cfg := DefaultComparisonConfig()
	cfg.Normalize = false
	raw, err := NewCurveComparatorWithConfig(cfg).CompareSeries(ts, other)
	require.NoError(t, err)
	assert.Less(t, raw.Similarity, result.Similarity)
}

// TestComparator_GradeThresholds verifies the grade labels follow the
// configured thresholds.
func TestComparator_GradeThresholds(t *testing.T) {
	cc := NewCurveComparator()
	assert.Equal(t, GradeExcellent, cc.grade(0.95))
	assert.Equal(t, GradeGood, cc.grade(0.8))
	assert.Equal(t, GradeFair, cc.grade(0.6))
	assert.Equal(t, GradePoor, cc.grade(0.2))
}

// TestComparator_FindBestMatches verifies ranking order, rank assignment,
// and the TopN cut.
func TestComparator_FindBestMatches(t *testing.T) {
	query := sineSeries(t, 0, 60)
	candidates := map[string]*timeseries.TimeSeries{
		"identical": sineSeries(t, 0, 60),
		"shifted":   sineSeries(t, 0.4, 60),
		"jagged":    noisySeries(t, 60),
	}

	matches, err := NewCurveComparator().FindBestMatches(query, candidates)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "identical", matches[0].Name)
	assert.Equal(t, "jagged", matches[2].Name)
	for i, m := range matches {
		assert.Equal(t, i+1, m.Rank)
		if i > 0 {
			assert.LessOrEqual(t, m.Result.Similarity, matches[i-1].Result.Similarity)
		}
	}

	cfg := DefaultComparisonConfig()
	cfg.TopN = 1
	top, err := NewCurveComparatorWithConfig(cfg).FindBestMatches(query, candidates)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "identical", top[0].Name)
}

// TestComparator_Validation verifies nil and empty rejection paths.
func TestComparator_Validation(t *testing.T) {
	ts := sineSeries(t, 0, 10)
	cc := NewCurveComparator()

	_, err := cc.CompareSeries(nil, ts)
	assert.ErrorIs(t, err, ErrNilSeries)

	_, err = cc.FindBestMatches(nil, map[string]*timeseries.TimeSeries{"a": ts})
	assert.ErrorIs(t, err, ErrNilSeries)

	_, err = cc.FindBestMatches(ts, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)

	cfg := DefaultComparisonConfig()
	cfg.StepPattern = "bogus"
	_, err = NewCurveComparatorWithConfig(cfg).CompareValues([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, warping.ErrUnknownStepPattern)
}
