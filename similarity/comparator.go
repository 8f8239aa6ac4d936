package similarity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/stats"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/warping"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

var (
	// ErrNilSeries is returned when a comparison input is nil
	ErrNilSeries = errors.New("similarity: nil series")

	// ErrNoCandidates is returned when a ranking is requested over an
	// empty candidate set
	ErrNoCandidates = errors.New("similarity: no candidates")
)

// Match grade labels, thresholded on the similarity score
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeFair      = "fair"
	GradePoor      = "poor"
)

// ComparisonConfig contains parameters for curve similarity scoring
type ComparisonConfig struct {
	// StepPattern, OpenBegin, and OpenEnd configure the underlying
	// alignment engine
	StepPattern warping.StepPattern `json:"step_pattern"`
	OpenBegin   bool                `json:"open_begin"`
	OpenEnd     bool                `json:"open_end"`

	// Normalize z-normalizes both sequences before alignment so level and
	// scale differences do not dominate shape differences
	Normalize bool `json:"normalize"`

	// TopN caps the number of ranked matches returned; zero keeps all
	TopN int `json:"top_n"`

	// Grade thresholds on the similarity score, highest first
	ExcellentThreshold float64 `json:"excellent_threshold"`
	GoodThreshold      float64 `json:"good_threshold"`
	FairThreshold      float64 `json:"fair_threshold"`
}

// DefaultComparisonConfig returns an open-ended symmetric comparison with
// z-normalization enabled
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		StepPattern:        warping.StepSymmetric,
		OpenBegin:          true,
		OpenEnd:            true,
		Normalize:          true,
		TopN:               0,
		ExcellentThreshold: 0.9,
		GoodThreshold:      0.75,
		FairThreshold:      0.5,
	}
}

// SimilarityResult holds the scored outcome of one pairwise comparison
type SimilarityResult struct {
	// Similarity maps the normalized alignment distance into (0, 1],
	// 1 meaning an exact match
	Similarity float64 `json:"similarity"`

	NormalizedDistance float64 `json:"normalized_distance"`
	PathLength         int     `json:"path_length"`

	// MatchGrade is the thresholded label for the similarity score
	MatchGrade string `json:"match_grade"`

	// Quality carries the alignment engine's secondary metrics
	Quality map[string]float64 `json:"quality"`
}

// Match is one ranked candidate in a best-match search
type Match struct {
	Name   string            `json:"name"`
	Result *SimilarityResult `json:"result"`
	Rank   int               `json:"rank"`
}

// CurveComparator scores the similarity of timeseries pairs by elastic
// alignment and ranks candidate sets against a query
type CurveComparator struct {
	config ComparisonConfig
	engine *warping.DTW
	logger logging.Logger
}

// NewCurveComparator creates a comparator with open-ended symmetric defaults
func NewCurveComparator() *CurveComparator {
	return NewCurveComparatorWithConfig(DefaultComparisonConfig())
}

// NewCurveComparatorWithConfig creates a comparator with a custom
// configuration
func NewCurveComparatorWithConfig(config ComparisonConfig) *CurveComparator {
	dtwCfg := warping.DefaultDTWConfig()
	dtwCfg.StepPattern = config.StepPattern
	dtwCfg.OpenBegin = config.OpenBegin
	dtwCfg.OpenEnd = config.OpenEnd

	return &CurveComparator{
		config: config,
		engine: warping.NewDTWWithConfig(dtwCfg),
		logger: logging.WithFields(logging.Fields{"component": "curve_comparator"}),
	}
}

// Config returns the comparator configuration
func (cc *CurveComparator) Config() ComparisonConfig {
	return cc.config
}

// CompareValues scores the similarity of two raw value sequences
func (cc *CurveComparator) CompareValues(a, b []float64) (*SimilarityResult, error) {
	if cc.config.Normalize {
		a = stats.ZNormalize(a)
		b = stats.ZNormalize(b)
	}

	alignment, err := cc.engine.Align(a, b)
	if err != nil {
		return nil, fmt.Errorf("similarity: alignment failed: %w", err)
	}

	result := &SimilarityResult{
		Similarity:         1 / (1 + alignment.Distance),
		NormalizedDistance: alignment.Distance,
		PathLength:         alignment.PathLength,
		Quality:            cc.engine.Quality(alignment),
	}
	result.MatchGrade = cc.grade(result.Similarity)

	cc.logger.Debug("compared sequences", logging.Fields{
		"distance":   result.NormalizedDistance,
		"similarity": result.Similarity,
		"grade":      result.MatchGrade,
	})
	return result, nil
}

// CompareSeries scores the similarity of two timeseries by their values.
// Observation times are not compared; the alignment itself absorbs time
// distortion.
func (cc *CurveComparator) CompareSeries(a, b *timeseries.TimeSeries) (*SimilarityResult, error) {
	if a == nil || b == nil {
		return nil, ErrNilSeries
	}
	return cc.CompareValues(a.Values(), b.Values())
}

// FindBestMatches scores every candidate against the query and returns them
// ranked by descending similarity. Ties rank alphabetically by name so the
// ordering is deterministic. TopN > 0 truncates the result.
func (cc *CurveComparator) FindBestMatches(query *timeseries.TimeSeries, candidates map[string]*timeseries.TimeSeries) ([]Match, error) {
	if query == nil {
		return nil, ErrNilSeries
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	matches := make([]Match, 0, len(candidates))
	for name, candidate := range candidates {
		result, err := cc.CompareSeries(query, candidate)
		if err != nil {
			return nil, fmt.Errorf("similarity: candidate %q: %w", name, err)
		}
		matches = append(matches, Match{Name: name, Result: result})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Result.Similarity != matches[j].Result.Similarity {
			return matches[i].Result.Similarity > matches[j].Result.Similarity
		}
		return matches[i].Name < matches[j].Name
	})
	for i := range matches {
		matches[i].Rank = i + 1
	}

	if cc.config.TopN > 0 && len(matches) > cc.config.TopN {
		matches = matches[:cc.config.TopN]
	}
	return matches, nil
}

func (cc *CurveComparator) grade(similarity float64) string {
	switch {
	case similarity >= cc.config.ExcellentThreshold:
		return GradeExcellent
	case similarity >= cc.config.GoodThreshold:
		return GradeGood
	case similarity >= cc.config.FairThreshold:
		return GradeFair
	default:
		return GradePoor
	}
}
