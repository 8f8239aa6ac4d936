package basis

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/common"
)

// BSplineBasis is a piecewise-polynomial basis of count functions of the
// given order (polynomial degree order-1) over a clamped uniform knot vector
// spanning [a, b].
//
// References:
// - de Boor, C. (1978). "A Practical Guide to Splines"
// - Ramsay, J.O., Silverman, B.W. (2005). "Functional Data Analysis", ch. 3-5
//
// The knot vector repeats each endpoint order times (clamping), with
// count-order interior knots evenly spaced, so the basis spans all piecewise
// polynomials of the given order with count-order+2 breakpoints and sums to
// one everywhere on the domain.
type BSplineBasis struct {
	a, b   float64
	count  int
	order  int
	knots  []float64
	breaks []float64
}

// NewBSpline validates and constructs a piecewise-polynomial basis. count
// must be at least order; order must be at least 1 (order 4 gives the usual
// cubic splines).
func NewBSpline(a, b float64, count, order int) (*BSplineBasis, error) {
	if !(b > a) {
		return nil, fmt.Errorf("%w: empty domain [%g, %g]", ErrInvalidConfig, a, b)
	}
	if order < 1 {
		return nil, fmt.Errorf("%w: bspline order must be >= 1, got %d", ErrInvalidConfig, order)
	}
	if count < order {
		return nil, fmt.Errorf("%w: bspline count %d must be >= order %d", ErrInvalidConfig, count, order)
	}

	breaks := common.Linspace(a, b, count-order+2)
	knots := make([]float64, 0, count+order)
	for i := 0; i < order; i++ {
		knots = append(knots, a)
	}
	knots = append(knots, breaks[1:len(breaks)-1]...)
	for i := 0; i < order; i++ {
		knots = append(knots, b)
	}

	return &BSplineBasis{
		a:      a,
		b:      b,
		count:  count,
		order:  order,
		knots:  knots,
		breaks: breaks,
	}, nil
}

func (bs *BSplineBasis) Family() Family { return BSpline }

func (bs *BSplineBasis) Count() int { return bs.count }

func (bs *BSplineBasis) Domain() (a, b float64) { return bs.a, bs.b }

// Order returns the polynomial order (degree + 1)
func (bs *BSplineBasis) Order() int { return bs.order }

// Knots returns a copy of the clamped knot vector
func (bs *BSplineBasis) Knots() []float64 {
	out := make([]float64, len(bs.knots))
	copy(out, bs.knots)
	return out
}

func (bs *BSplineBasis) Evaluate(t float64) ([]float64, error) {
	if err := checkDomain(t, bs.a, bs.b); err != nil {
		return nil, err
	}
	return bs.rowOfOrder(common.Clamp(t, bs.a, bs.b), bs.order), nil
}

func (bs *BSplineBasis) EvaluateVec(times []float64) (*mat.Dense, error) {
	return evalMatrix(bs, times, 0)
}

func (bs *BSplineBasis) Derivative(t float64, order int) ([]float64, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: negative derivative order %d", ErrInvalidConfig, order)
	}
	if order == 0 {
		return bs.Evaluate(t)
	}
	if err := checkDomain(t, bs.a, bs.b); err != nil {
		return nil, err
	}
	return bs.derivRow(common.Clamp(t, bs.a, bs.b), order), nil
}

func (bs *BSplineBasis) DerivativeVec(times []float64, order int) (*mat.Dense, error) {
	return evalMatrix(bs, times, order)
}

// rowOfOrder evaluates all basis functions of the given order at t by the
// Cox-de Boor triangular recurrence over the full knot vector. The returned
// slice has len(knots)-ord entries; at ord == bs.order that is exactly count.
func (bs *BSplineBasis) rowOfOrder(t float64, ord int) []float64 {
	knots := bs.knots
	n := len(knots) - 1

	// Order 1: indicators over half-open spans, closed at the right endpoint
	// so t == b lands in the last nonempty span
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		if t >= knots[i] && t < knots[i+1] {
			row[i] = 1
		} else if t == bs.b && knots[i] < knots[i+1] && knots[i+1] == bs.b {
			row[i] = 1
		}
	}

	for d := 1; d < ord; d++ {
		next := make([]float64, n-d)
		for i := range next {
			var left, right float64
			if den := knots[i+d] - knots[i]; den > 0 {
				left = (t - knots[i]) / den * row[i]
			}
			if den := knots[i+d+1] - knots[i+1]; den > 0 {
				right = (knots[i+d+1] - t) / den * row[i+1]
			}
			next[i] = left + right
		}
		row = next
	}
	return row
}

// derivRow evaluates the o-th derivative of every basis function at t.
// Derivatives of order >= the polynomial order vanish identically.
func (bs *BSplineBasis) derivRow(t float64, o int) []float64 {
	if o >= bs.order {
		return make([]float64, bs.count)
	}

	knots := bs.knots
	deg := bs.order - 1 - o
	row := bs.rowOfOrder(t, deg+1)

	// Differentiate o times: each pass lifts degree by one while turning
	// values into derivative values
	for s := 1; s <= o; s++ {
		p := deg + s
		next := make([]float64, len(row)-1)
		for i := range next {
			var left, right float64
			if den := knots[i+p] - knots[i]; den > 0 {
				left = row[i] / den
			}
			if den := knots[i+p+1] - knots[i+1]; den > 0 {
				right = row[i+1] / den
			}
			next[i] = float64(p) * (left - right)
		}
		row = next
	}
	return row
}

// PenaltyMatrix returns the Gram matrix of basis second derivatives,
// integrated span by span with Gauss-Legendre quadrature. Within a span the
// integrand is a polynomial of degree 2(order-3), so order nodes per span
// integrate it exactly.
func (bs *BSplineBasis) PenaltyMatrix() *mat.SymDense {
	R := mat.NewSymDense(bs.count, nil)

	rule := quad.Legendre{}
	nodes := make([]float64, bs.order)
	weights := make([]float64, bs.order)

	for s := 0; s+1 < len(bs.breaks); s++ {
		rule.FixedLocations(nodes, weights, bs.breaks[s], bs.breaks[s+1])
		for q, t := range nodes {
			row := bs.derivRow(t, 2)
			w := weights[q]
			for i := 0; i < bs.count; i++ {
				if row[i] == 0 {
					continue
				}
				for j := i; j < bs.count; j++ {
					if row[j] == 0 {
						continue
					}
					R.SetSym(i, j, R.At(i, j)+w*row[i]*row[j])
				}
			}
		}
	}
	return R
}
