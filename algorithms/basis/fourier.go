package basis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/common"
)

// FourierBasis is the periodic trigonometric basis over [a, b] with period
// equal to the domain length:
//
//	1, sin(ωu), cos(ωu), sin(2ωu), cos(2ωu), ...
//
// where u = t - a and ω = 2π/(b-a). The count must be odd (constant plus
// whole sin/cos pairs) and at least 3.
//
// Derivatives are analytic: each differentiation scales a pair by rω and
// advances its phase by π/2, so arbitrary orders are exact. The roughness
// penalty matrix is diagonal because the harmonics are orthogonal over a full
// period.
type FourierBasis struct {
	a, b  float64
	count int
	omega float64
}

// NewFourier validates and constructs a periodic basis of count functions
// over [a, b].
func NewFourier(a, b float64, count int) (*FourierBasis, error) {
	if !(b > a) {
		return nil, fmt.Errorf("%w: empty domain [%g, %g]", ErrInvalidConfig, a, b)
	}
	if count < 3 || count%2 == 0 {
		return nil, fmt.Errorf("%w: fourier count must be odd and >= 3, got %d", ErrInvalidConfig, count)
	}

	return &FourierBasis{
		a:     a,
		b:     b,
		count: count,
		omega: 2 * math.Pi / (b - a),
	}, nil
}

func (f *FourierBasis) Family() Family { return Fourier }

func (f *FourierBasis) Count() int { return f.count }

func (f *FourierBasis) Domain() (a, b float64) { return f.a, f.b }

// Harmonics returns the number of sin/cos pairs
func (f *FourierBasis) Harmonics() int { return (f.count - 1) / 2 }

func (f *FourierBasis) Evaluate(t float64) ([]float64, error) {
	if err := checkDomain(t, f.a, f.b); err != nil {
		return nil, err
	}
	u := common.Clamp(t, f.a, f.b) - f.a

	out := make([]float64, f.count)
	out[0] = 1
	for r := 1; r <= f.Harmonics(); r++ {
		w := float64(r) * f.omega
		out[2*r-1] = math.Sin(w * u)
		out[2*r] = math.Cos(w * u)
	}
	return out, nil
}

func (f *FourierBasis) EvaluateVec(times []float64) (*mat.Dense, error) {
	return evalMatrix(f, times, 0)
}

func (f *FourierBasis) Derivative(t float64, order int) ([]float64, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: negative derivative order %d", ErrInvalidConfig, order)
	}
	if order == 0 {
		return f.Evaluate(t)
	}
	if err := checkDomain(t, f.a, f.b); err != nil {
		return nil, err
	}
	u := common.Clamp(t, f.a, f.b) - f.a

	out := make([]float64, f.count)
	shift := float64(order) * math.Pi / 2
	for r := 1; r <= f.Harmonics(); r++ {
		w := float64(r) * f.omega
		scale := math.Pow(w, float64(order))
		out[2*r-1] = scale * math.Sin(w*u+shift)
		out[2*r] = scale * math.Cos(w*u+shift)
	}
	return out, nil
}

func (f *FourierBasis) DerivativeVec(times []float64, order int) (*mat.Dense, error) {
	return evalMatrix(f, times, order)
}

// PenaltyMatrix returns the diagonal Gram matrix of second derivatives:
// the pair at harmonic r contributes (rω)⁴ · T/2 on both its sin and cos
// entries, and the constant contributes zero.
func (f *FourierBasis) PenaltyMatrix() *mat.SymDense {
	R := mat.NewSymDense(f.count, nil)
	period := f.b - f.a
	for r := 1; r <= f.Harmonics(); r++ {
		w := float64(r) * f.omega
		v := math.Pow(w, 4) * period / 2
		R.SetSym(2*r-1, 2*r-1, v)
		R.SetSym(2*r, 2*r, v)
	}
	return R
}
