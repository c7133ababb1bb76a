package ports

import (
	"context"

	"nonlin/domain/series"
)

// SurrogatePort synthesizes null-model replicates of an observed series
type SurrogatePort interface {
	Generate(ctx context.Context, values series.TimeSeries, req SurrogateRequest) (*series.SurrogateSet, error)
}

// SurrogateRequest defines the inputs for one deterministic generation.
// Period is consumed only by the seasonal method. Seed drives the whole
// set: the same request against the same series reproduces it exactly.
type SurrogateRequest struct {
	Method series.Method
	Count  int
	Period int
	Seed   int64
}
