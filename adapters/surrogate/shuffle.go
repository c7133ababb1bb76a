package surrogate

import (
	"context"
	"math/rand"

	"nonlin/domain/core"
	"nonlin/domain/series"
)

// shuffleSurrogates fills each column with an independent uniform
// permutation of the input, destroying all temporal structure while
// keeping the marginal distribution exactly. Non-finite values pass
// through untouched since permutation never reads them arithmetically.
func shuffleSurrogates(ctx context.Context, values series.TimeSeries, streams []*rand.Rand) (*series.SurrogateSet, error) {
	n := len(values)
	if n < 1 {
		return nil, core.NewSeriesTooShortError(n, 1)
	}

	set := series.NewSurrogateSet(n, len(streams))
	for j, rng := range streams {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}

		col := set.Column(j)
		copy(col, values)

		// Fisher-Yates shuffle
		for i := n - 1; i > 0; i-- {
			k := rng.Intn(i + 1)
			col[i], col[k] = col[k], col[i]
		}
	}
	return set, nil
}
