package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
)

var (
	// ErrTooShort is returned when the input has fewer than four samples
	ErrTooShort = errors.New("spectral: sequence too short for period estimation")

	// ErrInvalidRate is returned for a non-positive sample spacing
	ErrInvalidRate = errors.New("spectral: sample spacing must be positive")
)

// PeriodEstimate describes the dominant oscillation found in a sequence
type PeriodEstimate struct {
	// DominantFrequency is the frequency of the strongest spectral peak,
	// in cycles per time unit
	DominantFrequency float64 `json:"dominant_frequency"`

	// Period is the reciprocal of the dominant frequency
	Period float64 `json:"period"`

	// Power is the squared magnitude of the peak bin
	Power float64 `json:"power"`

	// NyquistLimited reports that the peak sits in the highest resolvable
	// bin, so the true period may be shorter than the sampling can show
	NyquistLimited bool `json:"nyquist_limited"`
}

// PeriodEstimator finds the dominant period of a regularly sampled sequence
// from its discrete Fourier spectrum. A useful diagnostic before fitting:
// a strong dominant period suggests a Fourier basis with the matching domain.
type PeriodEstimator struct {
	logger logging.Logger
}

// NewPeriodEstimator creates a period estimator
func NewPeriodEstimator() *PeriodEstimator {
	return &PeriodEstimator{
		logger: logging.WithFields(logging.Fields{"component": "period_estimator"}),
	}
}

// Estimate computes the dominant frequency and period of values sampled at
// spacing dt. The mean is removed first so the zero-frequency bin cannot
// mask the oscillation.
func (pe *PeriodEstimator) Estimate(values []float64, dt float64) (*PeriodEstimate, error) {
	if len(values) < 4 {
		return nil, fmt.Errorf("%w: %d samples, need at least 4", ErrTooShort, len(values))
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidRate, dt)
	}

	centered := make([]float64, len(values))
	mean := stat.Mean(values, nil)
	for i, v := range values {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)

	// Positive frequencies only; bin 0 is the removed mean
	n := len(values)
	half := n / 2
	peak := 1
	peakPower := 0.0
	for k := 1; k <= half; k++ {
		if power := cmplx.Abs(spectrum[k]); power*power > peakPower {
			peakPower = power * power
			peak = k
		}
	}

	freq := float64(peak) / (float64(n) * dt)
	estimate := &PeriodEstimate{
		DominantFrequency: freq,
		Period:            1 / freq,
		Power:             peakPower,
		NyquistLimited:    peak == half,
	}

	pe.logger.Debug("period estimated", logging.Fields{
		"samples":   n,
		"dt":        dt,
		"frequency": estimate.DominantFrequency,
		"period":    estimate.Period,
	})
	return estimate, nil
}

// EstimateFromTimes is a convenience wrapper for values on a uniform time
// grid; it derives dt from the first and last times. Irregular grids are the
// caller's responsibility to resample first.
func (pe *PeriodEstimator) EstimateFromTimes(times, values []float64) (*PeriodEstimate, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times, %d values", ErrTooShort, len(times), len(values))
	}
	if len(times) < 4 {
		return nil, fmt.Errorf("%w: %d samples, need at least 4", ErrTooShort, len(times))
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if dt <= 0 || math.IsNaN(dt) {
		return nil, fmt.Errorf("%w: derived dt=%g", ErrInvalidRate, dt)
	}
	return pe.Estimate(values, dt)
}
