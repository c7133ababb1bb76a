package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"nonlin/domain/core"
)

// Smoothing parameter search grid for generalized cross-validation.
const (
	logLambdaMin   = -4
	logLambdaMax   = 4
	lambdaGridSize = 25
)

// seasonalCycle extracts the smooth periodic component of a series by
// regressing it on its season index (position within cycle). The index
// is wrapped one full period to each side and the spline fit on the
// tripled grid so the cycle closes without edge artifacts; only the
// middle copy is read back.
//
// Replicated season positions are collapsed to weighted means before
// fitting, which leaves one equally spaced knot per position and makes
// the penalized system small regardless of series length.
func seasonalCycle(values []float64, period int) ([]float64, error) {
	n := len(values)

	counts := make([]float64, period)
	sums := make([]float64, period)
	for i, v := range values {
		p := i % period
		counts[p]++
		sums[p] += v
	}
	means := make([]float64, period)
	for p := range means {
		means[p] = sums[p] / counts[p]
	}

	// Scatter of observations about their position means. Constant in
	// the smoothing parameter but part of the GCV numerator.
	withinSS := 0.0
	for i, v := range values {
		d := v - means[i%period]
		withinSS += d * d
	}

	m := 3 * period
	weights := make([]float64, m)
	targets := make([]float64, m)
	for c := 0; c < 3; c++ {
		for p := 0; p < period; p++ {
			weights[c*period+p] = counts[p]
			targets[c*period+p] = means[p]
		}
	}

	fitted, err := fitSmoothingSpline(targets, weights, 3*withinSS, float64(3*n))
	if err != nil {
		return nil, fmt.Errorf("seasonal cycle fit: %w", err)
	}

	cycle := make([]float64, n)
	for i := range cycle {
		cycle[i] = fitted[period+i%period]
	}
	return cycle, nil
}

// fitSmoothingSpline solves a natural cubic smoothing spline on
// unit-spaced knots in its Reinsch form: minimizing
//
//	sum_i w_i (y_i - f_i)^2 + lambda * integral f''(x)^2 dx
//
// over functions f reduces to the linear system (W + lambda*K) f = W y
// with K = Q R^-1 Q^T. The smoothing parameter is chosen by generalized
// cross-validation over a log-spaced grid, with baseRSS carrying the
// lambda-independent scatter of the raw observations and nObs their
// total count.
func fitSmoothingSpline(y, w []float64, baseRSS, nObs float64) ([]float64, error) {
	m := len(y)
	if m < 4 {
		return nil, core.NewSeriesTooShortError(m, 4)
	}

	penalty, err := penaltyMatrix(m)
	if err != nil {
		return nil, err
	}

	var (
		best    []float64
		bestGCV = math.Inf(1)
	)
	for _, lambda := range lambdaGrid() {
		fitted, trace, err := solvePenalized(penalty, y, w, lambda)
		if err != nil {
			continue
		}

		rss := baseRSS
		for i := range fitted {
			d := y[i] - fitted[i]
			rss += w[i] * d * d
		}

		den := 1 - trace/nObs
		if den <= 0 {
			continue
		}
		gcv := (rss / nObs) / (den * den)
		if gcv < bestGCV {
			bestGCV = gcv
			best = fitted
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no smoothing parameter produced a solvable system")
	}
	return best, nil
}

// penaltyMatrix assembles K = Q R^-1 Q^T for unit knot spacing. Q holds
// the second divided differences of the knot values and R the overlap
// integrals of the natural cubic basis on interior knots.
func penaltyMatrix(m int) (*mat.Dense, error) {
	q := mat.NewDense(m, m-2, nil)
	r := mat.NewDense(m-2, m-2, nil)
	for j := 0; j < m-2; j++ {
		q.Set(j, j, 1)
		q.Set(j+1, j, -2)
		q.Set(j+2, j, 1)
		r.Set(j, j, 2.0/3.0)
		if j > 0 {
			r.Set(j, j-1, 1.0/6.0)
			r.Set(j-1, j, 1.0/6.0)
		}
	}

	var x mat.Dense
	if err := x.Solve(r, q.T()); err != nil {
		return nil, fmt.Errorf("penalty matrix assembly: %w", err)
	}
	var k mat.Dense
	k.Mul(q, &x)
	return &k, nil
}

// solvePenalized solves (W + lambda*K) f = W y and reports the trace of
// the hat matrix (W + lambda*K)^-1 W, the effective degrees of freedom
// used by GCV.
func solvePenalized(penalty *mat.Dense, y, w []float64, lambda float64) ([]float64, float64, error) {
	m := len(y)

	a := mat.NewDense(m, m, nil)
	a.Scale(lambda, penalty)
	for i := 0; i < m; i++ {
		a.Set(i, i, a.At(i, i)+w[i])
	}

	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, w[i]*y[i])
	}

	var f mat.VecDense
	if err := f.SolveVec(a, rhs); err != nil {
		return nil, 0, err
	}

	wMat := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		wMat.Set(i, i, w[i])
	}
	var h mat.Dense
	if err := h.Solve(a, wMat); err != nil {
		return nil, 0, err
	}
	trace := 0.0
	for i := 0; i < m; i++ {
		trace += h.At(i, i)
	}

	fitted := make([]float64, m)
	for i := range fitted {
		fitted[i] = f.AtVec(i)
	}
	return fitted, trace, nil
}

func lambdaGrid() []float64 {
	grid := make([]float64, 0, lambdaGridSize)
	span := float64(logLambdaMax - logLambdaMin)
	for i := 0; i < lambdaGridSize; i++ {
		exp := float64(logLambdaMin) + span*float64(i)/float64(lambdaGridSize-1)
		grid = append(grid, math.Pow(10, exp))
	}
	return grid
}
