package smoothing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/basis"
)

// FittedCurve is an immutable continuous curve representation: a basis plus
// one coefficient column per replicate, together with the roughness weight
// used to obtain them. It may be evaluated repeatedly and shared read-only
// across goroutines.
type FittedCurve struct {
	basis  basis.Basis
	coef   *mat.Dense
	lambda float64
}

// Basis returns the basis the curve is expressed in
func (fc *FittedCurve) Basis() basis.Basis {
	return fc.basis
}

// Lambda returns the roughness weight used for the fit
func (fc *FittedCurve) Lambda() float64 {
	return fc.lambda
}

// Replicates returns the number of fitted coefficient columns
func (fc *FittedCurve) Replicates() int {
	_, reps := fc.coef.Dims()
	return reps
}

// Domain returns the valid evaluation interval
func (fc *FittedCurve) Domain() (a, b float64) {
	return fc.basis.Domain()
}

// Coefficients returns a copy of the coefficient vector for one replicate
func (fc *FittedCurve) Coefficients(rep int) ([]float64, error) {
	if rep < 0 || rep >= fc.Replicates() {
		return nil, fmt.Errorf("%w: replicate %d of %d", ErrReplicateRange, rep, fc.Replicates())
	}
	return mat.Col(nil, rep, fc.coef), nil
}

// EvaluateAt reconstructs the curve value at a single time
func (fc *FittedCurve) EvaluateAt(t float64, rep int) (float64, error) {
	coef, err := fc.Coefficients(rep)
	if err != nil {
		return 0, err
	}
	row, err := fc.basis.Evaluate(t)
	if err != nil {
		return 0, err
	}
	return floats.Dot(row, coef), nil
}

// Evaluate reconstructs curve values at the given times. Times outside the
// basis domain fail with basis.ErrOutOfDomain.
func (fc *FittedCurve) Evaluate(times []float64, rep int) ([]float64, error) {
	return fc.reconstruct(times, rep, 0)
}

// Derivative reconstructs values of the order-th curve derivative at the
// given times. Order 0 is plain evaluation.
func (fc *FittedCurve) Derivative(times []float64, rep int, order int) ([]float64, error) {
	return fc.reconstruct(times, rep, order)
}

func (fc *FittedCurve) reconstruct(times []float64, rep int, order int) ([]float64, error) {
	coef, err := fc.Coefficients(rep)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(times))
	for i, t := range times {
		row, err := fc.basis.Derivative(t, order)
		if err != nil {
			return nil, err
		}
		out[i] = floats.Dot(row, coef)
	}
	return out, nil
}

// Roughness returns the integrated squared second derivative cᵀRc of one
// replicate's curve, the quantity the penalty weight controls.
func (fc *FittedCurve) Roughness(rep int) (float64, error) {
	coef, err := fc.Coefficients(rep)
	if err != nil {
		return 0, err
	}
	c := mat.NewVecDense(len(coef), coef)
	return mat.Inner(c, fc.basis.PenaltyMatrix(), c), nil
}
