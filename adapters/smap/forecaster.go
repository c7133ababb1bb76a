// Package smap fits sequential locally weighted global linear maps
// (S-maps) to the delay embedding of a scalar series. Sweeping the
// locality parameter theta from zero upward moves the model from a
// single global linear map toward state-dependent local fits, which is
// what the nonlinearity test measures.
package smap

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"nonlin/domain/core"
	"nonlin/domain/series"
	"nonlin/domain/skill"
	"nonlin/ports"
)

// Singular values below this fraction of the largest are treated as
// zero when solving the weighted least squares system.
const rankTolerance = 1e-12

// DefaultThetaGrid returns the canonical locality grid. It starts at
// zero (the global linear map every comparison is anchored to) and
// spaces the remaining values roughly logarithmically.
func DefaultThetaGrid() []float64 {
	return []float64{
		0, 1e-4, 3e-4, 1e-3, 3e-3, 0.01, 0.03, 0.1, 0.3,
		0.5, 0.75, 1, 1.5, 2, 3, 4, 6, 8,
	}
}

// Options configure the embedding geometry and the theta sweep. The
// embedding dimension itself arrives per evaluation call.
type Options struct {
	// Tau is the lag between embedding coordinates.
	Tau int
	// Tp is the forecast horizon in steps.
	Tp int
	// ThetaGrid is the locality sweep. Values must be finite and
	// non-negative.
	ThetaGrid []float64
}

// DefaultOptions returns next-step forecasting on consecutive lags
// with the canonical theta grid.
func DefaultOptions() Options {
	return Options{Tau: 1, Tp: 1, ThetaGrid: DefaultThetaGrid()}
}

// Forecaster evaluates leave-one-out S-map forecast skill across a
// theta grid.
type Forecaster struct {
	opts Options
}

var _ ports.ForecastPort = (*Forecaster)(nil)

// NewForecaster validates the options and copies the theta grid so
// later mutation of the caller's slice cannot change the sweep.
func NewForecaster(opts Options) (*Forecaster, error) {
	if opts.Tau < 1 {
		return nil, fmt.Errorf("%w: lag %d, must be at least 1", core.ErrInvalidOptions, opts.Tau)
	}
	if opts.Tp < 1 {
		return nil, fmt.Errorf("%w: prediction horizon %d, must be at least 1", core.ErrInvalidOptions, opts.Tp)
	}
	if len(opts.ThetaGrid) == 0 {
		return nil, fmt.Errorf("%w: empty theta grid", core.ErrInvalidOptions)
	}
	for _, theta := range opts.ThetaGrid {
		if math.IsNaN(theta) || math.IsInf(theta, 0) || theta < 0 {
			return nil, fmt.Errorf("%w: theta %v, must be finite and non-negative", core.ErrInvalidOptions, theta)
		}
	}

	grid := make([]float64, len(opts.ThetaGrid))
	copy(grid, opts.ThetaGrid)
	opts.ThetaGrid = grid
	return &Forecaster{opts: opts}, nil
}

// EvaluateThetaGrid embeds the series once and reports leave-one-out
// forecast skill for every theta in the grid.
func (f *Forecaster) EvaluateThetaGrid(ctx context.Context, values series.TimeSeries, embedding int) ([]skill.ThetaPoint, error) {
	if embedding < 1 {
		return nil, fmt.Errorf("%w: embedding dimension %d, must be at least 1", core.ErrInvalidOptions, embedding)
	}
	if err := values.CheckFinite(); err != nil {
		return nil, err
	}

	frame, err := f.embed(values, embedding)
	if err != nil {
		return nil, err
	}

	profile := make([]skill.ThetaPoint, 0, len(f.opts.ThetaGrid))
	for _, theta := range f.opts.ThetaGrid {
		point, err := frame.evaluate(ctx, theta)
		if err != nil {
			return nil, err
		}
		profile = append(profile, point)
	}
	return profile, nil
}

// delayFrame is the embedded series with its pairwise state distances,
// computed once and shared by every theta evaluation.
type delayFrame struct {
	states    [][]float64
	targets   []float64
	dists     [][]float64
	meanDists []float64
}

func (f *Forecaster) embed(values []float64, embedding int) (*delayFrame, error) {
	n := len(values)
	first := (embedding - 1) * f.opts.Tau
	rows := n - f.opts.Tp - first
	minRows := embedding + 2
	if rows < minRows {
		return nil, fmt.Errorf("%w: series of length %d leaves %d embedded points at dimension %d, need at least %d",
			core.ErrInsufficientData, n, rows, embedding, minRows)
	}

	states := make([][]float64, rows)
	targets := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := first + r
		state := make([]float64, embedding)
		for k := 0; k < embedding; k++ {
			state[k] = values[t-k*f.opts.Tau]
		}
		states[r] = state
		targets[r] = values[t+f.opts.Tp]
	}

	dists := make([][]float64, rows)
	for i := range dists {
		dists[i] = make([]float64, rows)
	}
	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			d := euclidean(states[i], states[j])
			dists[i][j] = d
			dists[j][i] = d
		}
	}

	meanDists := make([]float64, rows)
	for i := range meanDists {
		sum := 0.0
		for j, d := range dists[i] {
			if j != i {
				sum += d
			}
		}
		meanDists[i] = sum / float64(rows-1)
	}

	return &delayFrame{
		states:    states,
		targets:   targets,
		dists:     dists,
		meanDists: meanDists,
	}, nil
}

// evaluate runs the leave-one-out sweep for a single theta. Each
// held-out state is predicted by a linear map fit to all other states,
// weighted by their distance to the predictee; theta zero weights all
// states equally and reduces to one global regression.
func (fr *delayFrame) evaluate(ctx context.Context, theta float64) (skill.ThetaPoint, error) {
	rows := len(fr.states)
	dim := len(fr.states[0]) + 1

	preds := make([]float64, rows)
	design := mat.NewDense(rows-1, dim, nil)
	rhs := mat.NewDense(rows-1, 1, nil)

	for i := 0; i < rows; i++ {
		if err := cancelled(ctx); err != nil {
			return skill.ThetaPoint{}, err
		}

		r := 0
		for j := 0; j < rows; j++ {
			if j == i {
				continue
			}
			w := 1.0
			if theta > 0 && fr.meanDists[i] > 0 {
				w = math.Exp(-theta * fr.dists[i][j] / fr.meanDists[i])
			}
			sw := math.Sqrt(w)
			design.Set(r, 0, sw)
			for k, v := range fr.states[j] {
				design.Set(r, k+1, sw*v)
			}
			rhs.Set(r, 0, sw*fr.targets[j])
			r++
		}

		var svd mat.SVD
		if !svd.Factorize(design, mat.SVDThin) {
			return skill.ThetaPoint{}, fmt.Errorf("svd factorization failed at theta %g", theta)
		}
		rank := svd.Rank(rankTolerance)
		if rank == 0 {
			return skill.ThetaPoint{}, fmt.Errorf("weighted design collapsed at theta %g", theta)
		}
		var coef mat.Dense
		svd.SolveTo(&coef, rhs, rank)

		pred := coef.At(0, 0)
		for k, v := range fr.states[i] {
			pred += coef.At(k+1, 0) * v
		}
		preds[i] = pred
	}

	rho := stat.Correlation(preds, fr.targets, nil)

	absErr := make([]float64, rows)
	for i := range absErr {
		absErr[i] = math.Abs(preds[i] - fr.targets[i])
	}
	mae, err := stats.Mean(absErr)
	if err != nil {
		return skill.ThetaPoint{}, fmt.Errorf("mean absolute error: %w", err)
	}

	return skill.ThetaPoint{Theta: theta, Rho: rho, MAE: mae}, nil
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for k := range a {
		d := a[k] - b[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
