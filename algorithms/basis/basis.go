package basis

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidConfig is returned for invalid family, count, order, or domain
	ErrInvalidConfig = errors.New("basis: invalid configuration")

	// ErrOutOfDomain is returned when evaluating outside the basis domain
	ErrOutOfDomain = errors.New("basis: time outside basis domain")
)

// Family identifies a basis family
type Family int

const (
	// Fourier is the periodic trigonometric family (constant + sin/cos pairs)
	Fourier Family = iota

	// BSpline is the piecewise-polynomial family over a clamped uniform
	// knot vector
	BSpline
)

func (f Family) String() string {
	switch f {
	case Fourier:
		return "fourier"
	case BSpline:
		return "bspline"
	default:
		return "unknown"
	}
}

// ParseFamily maps a family name to its Family value. The long-form aliases
// "periodic" and "piecewise-polynomial" are accepted alongside the short
// names.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fourier", "periodic":
		return Fourier, nil
	case "bspline", "b-spline", "piecewise-polynomial":
		return BSpline, nil
	default:
		return 0, fmt.Errorf("%w: unknown basis family %q", ErrInvalidConfig, name)
	}
}

// Basis is a fixed family of k real-valued functions over a closed domain
// [a, b], evaluable together with their derivatives, plus the Gram matrix of
// their second derivatives used as a roughness penalty.
//
// Implementations are immutable and safe for concurrent use.
type Basis interface {
	Family() Family
	Count() int
	Domain() (a, b float64)

	// Evaluate returns the k basis values at time t
	Evaluate(t float64) ([]float64, error)

	// EvaluateVec returns the design matrix with one row per time and one
	// column per basis function
	EvaluateVec(times []float64) (*mat.Dense, error)

	// Derivative returns the k values of the order-th derivative at time t.
	// Order 0 is plain evaluation.
	Derivative(t float64, order int) ([]float64, error)

	// DerivativeVec is the matrix form of Derivative
	DerivativeVec(times []float64, order int) (*mat.Dense, error)

	// PenaltyMatrix returns the k x k matrix of inner products of basis
	// second derivatives over the domain
	PenaltyMatrix() *mat.SymDense
}

// DefaultBSplineOrder is the polynomial order used when New is called with
// order 0 for the BSpline family (cubic splines).
const DefaultBSplineOrder = 4

// New constructs a basis of the given family over [a, b] with count
// functions. The order argument applies to the BSpline family only; passing 0
// selects DefaultBSplineOrder, and any value is ignored for Fourier.
func New(family Family, a, b float64, count, order int) (Basis, error) {
	switch family {
	case Fourier:
		return NewFourier(a, b, count)
	case BSpline:
		if order == 0 {
			order = DefaultBSplineOrder
		}
		return NewBSpline(a, b, count, order)
	default:
		return nil, fmt.Errorf("%w: unknown basis family %d", ErrInvalidConfig, int(family))
	}
}

// evalMatrix assembles the row-per-time design matrix for a basis by looping
// its pointwise evaluators.
func evalMatrix(b Basis, times []float64, order int) (*mat.Dense, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: no evaluation times", ErrInvalidConfig)
	}

	out := mat.NewDense(len(times), b.Count(), nil)
	for i, t := range times {
		var (
			row []float64
			err error
		)
		if order == 0 {
			row, err = b.Evaluate(t)
		} else {
			row, err = b.Derivative(t, order)
		}
		if err != nil {
			return nil, err
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// checkDomain validates t against [a, b] allowing a sliver of rounding slop
// from grid arithmetic; callers clamp after a nil return.
func checkDomain(t, a, b float64) error {
	tol := 1e-9 * (b - a)
	if t < a-tol || t > b+tol {
		return fmt.Errorf("%w: t=%g outside [%g, %g]", ErrOutOfDomain, t, a, b)
	}
	return nil
}
