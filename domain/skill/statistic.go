package skill

import (
	"fmt"
	"math"

	"nonlin/domain/core"
)

// ThetaPoint is one row of a forecast-skill profile: the nonlinearity
// parameter theta together with the skill the model achieved at that
// setting. Theta = 0 is the linear reference.
type ThetaPoint struct {
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
	MAE   float64 `json:"mae"`
}

// Statistic characterizes nonlinear-vs-linear forecast improvement for a
// single series. DeltaRho is the best correlation over the theta grid
// minus the correlation at theta 0; DeltaMAE is the error at theta 0
// minus the best error over the grid. Larger values mean the nonlinear
// settings outforecast the linear one.
type Statistic struct {
	DeltaRho float64 `json:"delta_rho"`
	DeltaMAE float64 `json:"delta_mae"`
}

// Compute derives the skill statistic from a forecast profile. The
// profile must contain the linear setting (theta exactly 0), since both
// deltas are measured against it.
func Compute(profile []ThetaPoint) (Statistic, error) {
	var (
		linear    ThetaPoint
		hasLinear bool
		maxRho    = math.Inf(-1)
		minMAE    = math.Inf(1)
	)

	for _, p := range profile {
		if !finite(p.Rho) || !finite(p.MAE) {
			return Statistic{}, fmt.Errorf("%w: rho %v, mae %v at theta %v",
				core.ErrNonFiniteSkill, p.Rho, p.MAE, p.Theta)
		}
		if p.Theta == 0 {
			linear = p
			hasLinear = true
		}
		if p.Rho > maxRho {
			maxRho = p.Rho
		}
		if p.MAE < minMAE {
			minMAE = p.MAE
		}
	}

	if !hasLinear {
		return Statistic{}, fmt.Errorf("%w: %d grid points evaluated",
			core.ErrMissingLinearTheta, len(profile))
	}

	return Statistic{
		DeltaRho: maxRho - linear.Rho,
		DeltaMAE: linear.MAE - minMAE,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NullDistribution is the set of statistics computed from the columns of
// a surrogate set. Insertion order carries no meaning; the distribution
// is only ranked against the observed statistic.
type NullDistribution []Statistic

// DeltaRhos extracts the delta_rho draws
func (d NullDistribution) DeltaRhos() []float64 {
	out := make([]float64, len(d))
	for i, s := range d {
		out[i] = s.DeltaRho
	}
	return out
}

// DeltaMAEs extracts the delta_mae draws
func (d NullDistribution) DeltaMAEs() []float64 {
	out := make([]float64, len(d))
	for i, s := range d {
		out[i] = s.DeltaMAE
	}
	return out
}

// PValues ranks an observed statistic against the null draws and returns
// the upper-tail empirical p-values for delta_rho and delta_mae.
func (d NullDistribution) PValues(observed Statistic) (deltaRhoP, deltaMAEP float64) {
	deltaRhoP = EmpiricalPValue(d.DeltaRhos(), observed.DeltaRho)
	deltaMAEP = EmpiricalPValue(d.DeltaMAEs(), observed.DeltaMAE)
	return deltaRhoP, deltaMAEP
}

// EmpiricalPValue is the share of null draws strictly greater than the
// observed value, with an add-one correction counting the observation
// itself as a member of the reference distribution. The result is
// bounded to [1/(n+1), 1] and never reaches zero.
func EmpiricalPValue(null []float64, observed float64) float64 {
	exceed := 0
	for _, v := range null {
		if v > observed {
			exceed++
		}
	}
	return float64(exceed+1) / float64(len(null)+1)
}
