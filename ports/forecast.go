package ports

import (
	"context"

	"nonlin/domain/series"
	"nonlin/domain/skill"
)

// ForecastPort evaluates forecast skill across a nonlinearity parameter
// grid. Implementations hold their own grid configuration; the grid must
// include theta 0 so skill deltas against the linear setting are
// defined. Errors from an implementation are treated as fatal by callers
// and propagate unchanged.
type ForecastPort interface {
	// EvaluateThetaGrid fits the model at every theta in the configured
	// grid and reports (theta, rho, mae) for each setting.
	EvaluateThetaGrid(ctx context.Context, values series.TimeSeries, embedding int) ([]skill.ThetaPoint, error)
}
