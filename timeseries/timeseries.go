package timeseries

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a series is constructed with no observations
	ErrEmpty = errors.New("timeseries: empty series")

	// ErrLengthMismatch is returned when times and values differ in length
	ErrLengthMismatch = errors.New("timeseries: times and values length mismatch")

	// ErrUnorderedTimes is returned when times are not strictly increasing
	ErrUnorderedTimes = errors.New("timeseries: times must be strictly increasing")
)

// TimeSeries is an immutable ordered sequence of (time, value) observations.
// Times are strictly increasing. Accessors return defensive copies so a series
// can be shared read-only across goroutines.
type TimeSeries struct {
	times  []float64
	values []float64
}

// New validates and constructs a TimeSeries. The input slices are copied.
func New(times, values []float64) (*TimeSeries, error) {
	if len(times) == 0 || len(values) == 0 {
		return nil, ErrEmpty
	}
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: times[%d]=%g, times[%d]=%g", ErrUnorderedTimes, i-1, times[i-1], i, times[i])
		}
	}

	ts := &TimeSeries{
		times:  make([]float64, len(times)),
		values: make([]float64, len(values)),
	}
	copy(ts.times, times)
	copy(ts.values, values)
	return ts, nil
}

// Len returns the number of observations
func (ts *TimeSeries) Len() int {
	return len(ts.times)
}

// Times returns a copy of the time axis
func (ts *TimeSeries) Times() []float64 {
	out := make([]float64, len(ts.times))
	copy(out, ts.times)
	return out
}

// Values returns a copy of the observed values
func (ts *TimeSeries) Values() []float64 {
	out := make([]float64, len(ts.values))
	copy(out, ts.values)
	return out
}

// At returns the i-th observation. i must be in [0, Len).
func (ts *TimeSeries) At(i int) (t, v float64) {
	return ts.times[i], ts.values[i]
}

// Domain returns the first and last observation times
func (ts *TimeSeries) Domain() (t0, t1 float64) {
	return ts.times[0], ts.times[len(ts.times)-1]
}

// Clone returns an independent copy of the series
func (ts *TimeSeries) Clone() *TimeSeries {
	clone, _ := New(ts.times, ts.values)
	return clone
}

// MarshalJSON encodes the series as parallel time and value arrays
func (ts *TimeSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Times  []float64 `json:"times"`
		Values []float64 `json:"values"`
	}{ts.times, ts.values})
}
