package warping

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
)

var (
	// ErrEmptySequence is returned when the query or reference is empty
	ErrEmptySequence = errors.New("warping: empty sequence")

	// ErrUnknownStepPattern is returned for an unrecognized step pattern name
	ErrUnknownStepPattern = errors.New("warping: unknown step pattern")

	// ErrNoPath is returned when no admissible warping path reaches the
	// terminal cell, e.g. an asymmetric pattern with closed boundaries and a
	// reference more than twice the query length
	ErrNoPath = errors.New("warping: no admissible warping path")
)

// StepPattern selects the set of allowed local moves in the DTW recurrence
type StepPattern string

const (
	// StepSymmetric permits one-to-many matches in both directions:
	// diagonal, query-advance, and reference-advance moves, all weight 1
	StepSymmetric StepPattern = "symmetric"

	// StepAsymmetric advances the query by exactly one per step while the
	// reference advances by 0, 1, or 2, biasing toward one-to-one query
	// coverage
	StepAsymmetric StepPattern = "asymmetric"

	// StepAsymmetricP05 widens the asymmetric local window with a slope
	// constraint, allowing steeper local reference stretches
	StepAsymmetricP05 StepPattern = "asymmetricP05"
)

// ParseStepPattern maps a step pattern name to its StepPattern value
func ParseStepPattern(name string) (StepPattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "symmetric":
		return StepSymmetric, nil
	case "asymmetric":
		return StepAsymmetric, nil
	case "asymmetricp05":
		return StepAsymmetricP05, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStepPattern, name)
	}
}

// move is one allowed predecessor step: the cell (i-di, j-dj) may precede
// (i, j) at weight times the local cost
type move struct {
	di, dj int
	weight float64
}

// Move tables are listed in tie-break priority order: diagonal first, then
// query-advance, then reference-advance. The fill loop minimizes (cost,
// steps) lexicographically and keeps the first move on full ties.
var stepMoves = map[StepPattern][]move{
	StepSymmetric: {
		{1, 1, 1},
		{1, 0, 1},
		{0, 1, 1},
	},
	StepAsymmetric: {
		{1, 1, 1},
		{1, 0, 1},
		{1, 2, 1},
	},
	StepAsymmetricP05: {
		{1, 1, 1},
		{1, 0, 1},
		{1, 2, 1},
		{1, 3, 1},
		{2, 1, 1},
	},
}

// DTWConfig contains parameters for the alignment dynamic program
type DTWConfig struct {
	// StepPattern selects the matching topology
	StepPattern StepPattern `json:"step_pattern"`

	// OpenBegin lets the path skip a reference prefix at no cost
	OpenBegin bool `json:"open_begin"`

	// OpenEnd lets the path leave a reference suffix unmatched at no cost
	OpenEnd bool `json:"open_end"`

	// KeepCostMatrix retains the cumulative cost matrix on the result.
	// It is O(n*m) memory, so off by default.
	KeepCostMatrix bool `json:"keep_cost_matrix"`
}

// DefaultDTWConfig returns a closed-boundary symmetric alignment
func DefaultDTWConfig() DTWConfig {
	return DTWConfig{
		StepPattern:    StepSymmetric,
		OpenBegin:      false,
		OpenEnd:        false,
		KeepCostMatrix: false,
	}
}

// PathPoint is one matched (query, reference) index pair on the warping path
type PathPoint struct {
	Query     int `json:"query"`
	Reference int `json:"reference"`
}

// AlignmentResult contains the outcome of one alignment
type AlignmentResult struct {
	// Distance is the path-length-normalized alignment cost, comparable
	// across pairs of different lengths
	Distance float64 `json:"distance"`

	// TotalCost is the raw cumulative cost at the terminal cell
	TotalCost float64 `json:"total_cost"`

	// PathLength is the number of steps on the minimum-cost path
	PathLength int `json:"path_length"`

	Path []PathPoint `json:"path"`

	// CostMatrix is nil unless KeepCostMatrix was set
	CostMatrix [][]float64 `json:"cost_matrix,omitempty"`

	QueryLength     int         `json:"query_length"`
	ReferenceLength int         `json:"reference_length"`
	StepPattern     StepPattern `json:"step_pattern"`
	OpenBegin       bool        `json:"open_begin"`
	OpenEnd         bool        `json:"open_end"`
}

// DTW computes elastic dynamic-time-warping alignments between two
// one-dimensional sequences under a configurable step pattern and open or
// closed boundary policy. Each Align call is an independent pure computation;
// the workspace is scoped to the call and released on return, so one DTW
// value can serve concurrent callers.
type DTW struct {
	config DTWConfig
	logger logging.Logger
}

// NewDTW creates an engine with closed-boundary symmetric defaults
func NewDTW() *DTW {
	return NewDTWWithConfig(DefaultDTWConfig())
}

// NewDTWWithConfig creates an engine with a custom configuration
func NewDTWWithConfig(config DTWConfig) *DTW {
	return &DTW{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "dtw"}),
	}
}

// Config returns the engine configuration
func (d *DTW) Config() DTWConfig {
	return d.config
}

// Align computes the minimum-cost warping between query and reference under
// absolute-difference local cost. The normalized distance is the total path
// cost divided by the number of path steps.
//
// Closed boundaries pin the path to (0,0) and (n,m). An open end picks the
// final-row terminal with the best normalized cost; an open begin scans every
// admissible start offset, one O(n*m) dynamic program each, and keeps the
// offset with the best normalized cost. Both relaxations therefore include
// the closed solution among their candidates, so opening a boundary can never
// increase the reported distance.
func (d *DTW) Align(query, reference []float64) (*AlignmentResult, error) {
	if len(query) == 0 || len(reference) == 0 {
		return nil, fmt.Errorf("%w: query %d points, reference %d points",
			ErrEmptySequence, len(query), len(reference))
	}
	moves, ok := stepMoves[d.config.StepPattern]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepPattern, d.config.StepPattern)
	}

	n := len(query)
	m := len(reference)
	ws := newWorkspace(n, m)

	maxStart := 0
	if d.config.OpenBegin {
		maxStart = m - 1
	}

	bestStart, bestEnd := -1, -1
	bestRatio := math.Inf(1)
	for start := 0; start <= maxStart; start++ {
		ws.fill(query, reference, moves, start)
		end, ratio, reachable := ws.terminal(m, d.config.OpenEnd)
		if reachable && ratio < bestRatio {
			bestRatio = ratio
			bestStart = start
			bestEnd = end
		}
	}
	if bestStart < 0 {
		return nil, fmt.Errorf("%w: pattern %q, query %d points, reference %d points",
			ErrNoPath, d.config.StepPattern, n, m)
	}

	// Recompute the winning offset so the workspace holds its backtrack state
	if bestStart != maxStart {
		ws.fill(query, reference, moves, bestStart)
	}

	totalCost := ws.cost[n][bestEnd]
	pathLength := ws.steps[n][bestEnd]

	result := &AlignmentResult{
		Distance:        totalCost / float64(pathLength),
		TotalCost:       totalCost,
		PathLength:      pathLength,
		Path:            ws.backtrack(moves, n, bestEnd),
		QueryLength:     n,
		ReferenceLength: m,
		StepPattern:     d.config.StepPattern,
		OpenBegin:       d.config.OpenBegin,
		OpenEnd:         d.config.OpenEnd,
	}
	if d.config.KeepCostMatrix {
		result.CostMatrix = ws.trimmedCost()
	}

	d.logger.Debug("alignment complete", logging.Fields{
		"pattern":     d.config.StepPattern,
		"query":       n,
		"reference":   m,
		"path_length": pathLength,
		"distance":    result.Distance,
	})
	return result, nil
}

// workspace holds the cumulative cost matrix, the per-cell step counts, and
// the winning move index used for backtracking
type workspace struct {
	cost   [][]float64
	steps  [][]int
	chosen [][]int8
}

func newWorkspace(n, m int) *workspace {
	ws := &workspace{
		cost:   make([][]float64, n+1),
		steps:  make([][]int, n+1),
		chosen: make([][]int8, n+1),
	}
	for i := range ws.cost {
		ws.cost[i] = make([]float64, m+1)
		ws.steps[i] = make([]int, m+1)
		ws.chosen[i] = make([]int8, m+1)
	}
	return ws
}

// fill runs the dynamic program from the single source (0, start)
func (ws *workspace) fill(query, reference []float64, moves []move, start int) {
	for i := range ws.cost {
		for j := range ws.cost[i] {
			ws.cost[i][j] = math.Inf(1)
			ws.steps[i][j] = 0
			ws.chosen[i][j] = -1
		}
	}
	ws.cost[0][start] = 0

	for i := 1; i <= len(query); i++ {
		for j := start + 1; j <= len(reference); j++ {
			local := math.Abs(query[i-1] - reference[j-1])
			for k, mv := range moves {
				pi := i - mv.di
				pj := j - mv.dj
				if pi < 0 || pj < 0 || math.IsInf(ws.cost[pi][pj], 1) {
					continue
				}
				// Equal-cost candidates prefer the shorter path so the
				// normalized distance does not depend on the move
				// enumeration order; full ties keep the highest-priority
				// move. The minimal length of a minimum-cost path is
				// invariant under swapping the sequences, which keeps the
				// symmetric pattern symmetric on tied costs.
				cand := ws.cost[pi][pj] + mv.weight*local
				candSteps := ws.steps[pi][pj] + 1
				if cand < ws.cost[i][j] ||
					(cand == ws.cost[i][j] && candSteps < ws.steps[i][j]) {
					ws.cost[i][j] = cand
					ws.steps[i][j] = candSteps
					ws.chosen[i][j] = int8(k)
				}
			}
		}
	}
}

// terminal selects the ending column on the last query row. A closed end
// forces column m; an open end picks the reachable column with the smallest
// normalized cost.
func (ws *workspace) terminal(m int, openEnd bool) (end int, ratio float64, reachable bool) {
	n := len(ws.cost) - 1
	if !openEnd {
		if math.IsInf(ws.cost[n][m], 1) {
			return 0, 0, false
		}
		return m, ws.cost[n][m] / float64(ws.steps[n][m]), true
	}

	end = -1
	ratio = math.Inf(1)
	for j := 1; j <= m; j++ {
		if math.IsInf(ws.cost[n][j], 1) || ws.steps[n][j] == 0 {
			continue
		}
		if r := ws.cost[n][j] / float64(ws.steps[n][j]); r < ratio {
			ratio = r
			end = j
		}
	}
	return end, ratio, end >= 0
}

// backtrack follows the recorded moves from the terminal cell up to the first
// row and returns the visited (query, reference) pairs in forward order
func (ws *workspace) backtrack(moves []move, i, j int) []PathPoint {
	var reversed []PathPoint
	for i > 0 && ws.chosen[i][j] >= 0 {
		reversed = append(reversed, PathPoint{Query: i - 1, Reference: j - 1})
		mv := moves[ws.chosen[i][j]]
		i -= mv.di
		j -= mv.dj
	}

	path := make([]PathPoint, len(reversed))
	for k := range reversed {
		path[len(reversed)-1-k] = reversed[k]
	}
	return path
}

// trimmedCost copies the cost matrix without the padding row and column so
// the result is indexed by sequence position
func (ws *workspace) trimmedCost() [][]float64 {
	out := make([][]float64, len(ws.cost)-1)
	for i := range out {
		out[i] = make([]float64, len(ws.cost[i+1])-1)
		copy(out[i], ws.cost[i+1][1:])
	}
	return out
}

// Quality derives secondary alignment quality metrics from a result:
// path_efficiency (expected length over actual), diagonal_ratio (share of
// strictly diagonal transitions), and average_cost per path step.
func (d *DTW) Quality(result *AlignmentResult) map[string]float64 {
	if result == nil || len(result.Path) == 0 {
		return map[string]float64{}
	}

	quality := make(map[string]float64)

	expected := math.Max(float64(result.QueryLength), float64(result.ReferenceLength))
	quality["path_efficiency"] = expected / float64(len(result.Path))

	diagonal := 0
	for i := 1; i < len(result.Path); i++ {
		if result.Path[i].Query > result.Path[i-1].Query &&
			result.Path[i].Reference > result.Path[i-1].Reference {
			diagonal++
		}
	}
	if len(result.Path) > 1 {
		quality["diagonal_ratio"] = float64(diagonal) / float64(len(result.Path)-1)
	}

	quality["average_cost"] = result.TotalCost / float64(result.PathLength)
	quality["normalized_distance"] = result.Distance

	return quality
}
