package surrogate

import (
	"context"
	"math/rand"

	"nonlin/domain/core"
	"nonlin/domain/series"
)

// seasonalSurrogates decomposes the series into a smooth periodic cycle
// plus residuals, then rebuilds each column as cycle + an independent
// permutation of the residuals. The deterministic seasonal component is
// preserved exactly while residual variability is randomized.
//
// Residuals are resampled without replacement and independently of
// their autocorrelation; for strongly autocorrelated residuals this
// null understates variance, a known limitation of the method.
func seasonalSurrogates(ctx context.Context, values series.TimeSeries, period int, streams []*rand.Rand) (*series.SurrogateSet, error) {
	n := len(values)
	if n < minSeriesLen {
		return nil, core.NewSeriesTooShortError(n, minSeriesLen)
	}
	if err := values.CheckFinite(); err != nil {
		return nil, err
	}
	if period < 2 || n < 2*period {
		return nil, core.NewInvalidPeriodError(period, n)
	}

	cycle, err := seasonalCycle(values, period)
	if err != nil {
		return nil, err
	}

	residual := make([]float64, n)
	for i := range residual {
		residual[i] = values[i] - cycle[i]
	}

	set := series.NewSurrogateSet(n, len(streams))
	for j, rng := range streams {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}

		col := set.Column(j)
		copy(col, residual)

		// Fisher-Yates shuffle of the residuals
		for i := n - 1; i > 0; i-- {
			k := rng.Intn(i + 1)
			col[i], col[k] = col[k], col[i]
		}
		for i := range col {
			col[i] += cycle[i]
		}
	}
	return set, nil
}
