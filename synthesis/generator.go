package synthesis

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/common"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

var (
	// ErrInvalidSpan is returned for a degenerate time span or sample count
	ErrInvalidSpan = errors.New("synthesis: invalid time span or sample count")

	// ErrInvalidConfig is returned for unusable generator parameters
	ErrInvalidConfig = errors.New("synthesis: invalid configuration")
)

// GeneratorConfig contains parameters of the synthetic seasonal signal
//
//	baseline + slope*(t-t0) + amplitude*sin(2π(t-t0)/period + phase) + noise
type GeneratorConfig struct {
	Baseline   float64 `json:"baseline"`
	Amplitude  float64 `json:"amplitude"`
	Period     float64 `json:"period"`
	Phase      float64 `json:"phase"`
	TrendSlope float64 `json:"trend_slope"`
	NoiseSD    float64 `json:"noise_sd"`

	// Seed drives the generator's own PCG source, so equal seeds reproduce
	// equal series without touching process-wide state
	Seed uint64 `json:"seed"`
}

// DefaultGeneratorConfig returns a diurnal-flavored signal: one cycle per 24
// time units with a mild upward trend and small noise
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Baseline:   10,
		Amplitude:  1,
		Period:     24,
		Phase:      0,
		TrendSlope: 0.01,
		NoiseSD:    0.05,
		Seed:       1,
	}
}

// Generator produces synthetic noisy seasonal timeseries, the opaque input
// producer for fitting and alignment experiments
type Generator struct {
	config GeneratorConfig
	noise  distuv.Normal
	logger logging.Logger
}

// NewGenerator creates a generator with the default diurnal signal
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(DefaultGeneratorConfig())
}

// NewGeneratorWithConfig creates a generator with a custom signal
func NewGeneratorWithConfig(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewPCG(config.Seed, config.Seed),
		},
		logger: logging.WithFields(logging.Fields{"component": "generator"}),
	}
}

// Config returns the generator configuration
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Generate produces n samples of the signal over [t0, t1]
func (g *Generator) Generate(t0, t1 float64, n int) (*timeseries.TimeSeries, error) {
	times, err := g.validate(t0, t1, n)
	if err != nil {
		return nil, err
	}

	values := make([]float64, n)
	for i, t := range times {
		values[i] = g.signal(t, t0)
	}

	g.logger.Debug("generated series", logging.Fields{
		"samples": n,
		"span":    t1 - t0,
		"period":  g.config.Period,
	})
	return timeseries.New(times, values)
}

// GenerateReplicates produces reps series over one shared time axis with
// independent noise draws per replicate, shaped for PenalizedFitter.FitMatrix:
// one value row per time, one column per replicate.
func (g *Generator) GenerateReplicates(t0, t1 float64, n, reps int) ([]float64, *mat.Dense, error) {
	if reps < 1 {
		return nil, nil, fmt.Errorf("%w: %d replicates", ErrInvalidConfig, reps)
	}
	times, err := g.validate(t0, t1, n)
	if err != nil {
		return nil, nil, err
	}

	values := mat.NewDense(n, reps, nil)
	for j := 0; j < reps; j++ {
		for i, t := range times {
			values.Set(i, j, g.signal(t, t0))
		}
	}
	return times, values, nil
}

func (g *Generator) validate(t0, t1 float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: %d samples, need at least 2", ErrInvalidSpan, n)
	}
	if t1 <= t0 {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidSpan, t0, t1)
	}
	if g.config.Period <= 0 {
		return nil, fmt.Errorf("%w: period %g must be positive", ErrInvalidConfig, g.config.Period)
	}
	if g.config.NoiseSD < 0 {
		return nil, fmt.Errorf("%w: noise sd %g must be non-negative", ErrInvalidConfig, g.config.NoiseSD)
	}
	return common.Linspace(t0, t1, n), nil
}

func (g *Generator) signal(t, t0 float64) float64 {
	v := g.config.Baseline +
		g.config.TrendSlope*(t-t0) +
		g.config.Amplitude*math.Sin(2*math.Pi*(t-t0)/g.config.Period+g.config.Phase)
	if g.config.NoiseSD > 0 {
		v += g.config.NoiseSD * g.noise.Rand()
	}
	return v
}
