package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyData is returned when a summary is requested for no observations
var ErrEmptyData = errors.New("stats: empty data")

// Summary contains descriptive statistics for one value sequence
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
	Median float64 `json:"median"`
	IQR    float64 `json:"iqr"`
}

// Describe computes descriptive statistics over the given values
func Describe(values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values to describe", ErrEmptyData)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	summary := &Summary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		IQR:    q3 - q1,
	}
	summary.Range = summary.Max - summary.Min
	if len(values) > 1 {
		summary.StdDev = stat.StdDev(values, nil)
	}
	return summary, nil
}

// ZNormalize returns a zero-mean, unit-variance copy of values. Sequences
// with no spread come back as all zeros rather than dividing by zero, so
// constant series stay comparable under distance measures.
func ZNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	mean := stat.Mean(values, nil)
	sd := 0.0
	if len(values) > 1 {
		sd = stat.StdDev(values, nil)
	}
	if sd == 0 || math.IsNaN(sd) {
		return out
	}

	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out
}
