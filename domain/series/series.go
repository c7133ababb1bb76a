package series

import (
	"math"

	"nonlin/domain/core"
)

// TimeSeries is an ordered sequence of scalar observations sampled at a
// fixed interval, indexed from 0. It is input-only: no operation in this
// module mutates a series in place.
type TimeSeries []float64

// New validates raw values as a time series of at least minimum length.
func New(values []float64, minLen int) (TimeSeries, error) {
	if len(values) < minLen {
		return nil, core.NewSeriesTooShortError(len(values), minLen)
	}
	ts := make(TimeSeries, len(values))
	copy(ts, values)
	return ts, nil
}

// Len returns the number of observations
func (ts TimeSeries) Len() int {
	return len(ts)
}

// Finite reports whether every observation is a real number
func (ts TimeSeries) Finite() bool {
	return ts.firstNonFinite() < 0
}

// CheckFinite fails with the offending index when the series holds a
// NaN or infinity. Spectral and seasonal surrogates require this; the
// shuffle method does not since it only permutes.
func (ts TimeSeries) CheckFinite() error {
	if i := ts.firstNonFinite(); i >= 0 {
		return core.NewNonFiniteError(i, ts[i])
	}
	return nil
}

func (ts TimeSeries) firstNonFinite() int {
	for i, v := range ts {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the series
func (ts TimeSeries) Clone() TimeSeries {
	out := make(TimeSeries, len(ts))
	copy(out, ts)
	return out
}
