package surrogate

import (
	"context"
	"fmt"
	"math/rand"

	"nonlin/domain/core"
	"nonlin/domain/series"
	"nonlin/ports"
)

// Spectral and seasonal reconstruction need a few points to work with;
// the shuffle method only needs a non-empty series.
const minSeriesLen = 4

// Generator synthesizes surrogate sets under one of the recognized null
// models. It implements ports.SurrogatePort.
type Generator struct {
	rngPort ports.RNGPort
}

// NewGenerator creates a surrogate generator
func NewGenerator(rngPort ports.RNGPort) *Generator {
	return &Generator{rngPort: rngPort}
}

// Generate dispatches on the requested method and fills one column per
// replicate. Every column consumes its own seeded stream, so a set is
// reproducible from the request seed and columns stay independent when
// generation is parallelized by callers.
func (g *Generator) Generate(ctx context.Context, values series.TimeSeries, req ports.SurrogateRequest) (*series.SurrogateSet, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidCount, req.Count)
	}
	if !req.Method.Valid() {
		return nil, core.NewUnknownMethodError(req.Method.String())
	}

	streams, err := g.streams(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("seeding surrogate streams: %w", err)
	}

	switch req.Method {
	case series.MethodRandomShuffle:
		return shuffleSurrogates(ctx, values, streams)
	case series.MethodEbisuzaki:
		return spectralSurrogates(ctx, values, streams)
	case series.MethodSeasonal:
		return seasonalSurrogates(ctx, values, req.Period, streams)
	}
	return nil, core.NewUnknownMethodError(req.Method.String())
}

func (g *Generator) streams(ctx context.Context, req ports.SurrogateRequest) ([]*rand.Rand, error) {
	seeds, err := g.rngPort.ChildSeeds(ctx, "surrogate-"+req.Method.String(), req.Seed, req.Count)
	if err != nil {
		return nil, err
	}

	streams := make([]*rand.Rand, len(seeds))
	for i, seed := range seeds {
		stream, err := g.rngPort.SeededStream(ctx, fmt.Sprintf("column-%d", i), seed)
		if err != nil {
			return nil, err
		}
		streams[i] = stream
	}
	return streams, nil
}

func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
