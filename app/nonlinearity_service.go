package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nonlin/domain/core"
	"nonlin/domain/series"
	"nonlin/domain/skill"
	"nonlin/ports"
)

// NonlinearityService runs the randomization test for nonlinear forecast
// structure in a scalar series: forecast skill of the observed series is
// ranked against the skill of method-specific surrogate series that
// share its linear properties but not its nonlinear ones.
type NonlinearityService struct {
	forecastPort  ports.ForecastPort
	surrogatePort ports.SurrogatePort
	logger        *zap.Logger
	workers       int
}

// NewNonlinearityService creates a nonlinearity test service. A nil
// logger disables logging; workers below 1 defaults to the CPU count.
func NewNonlinearityService(forecastPort ports.ForecastPort, surrogatePort ports.SurrogatePort, logger *zap.Logger, workers int) *NonlinearityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &NonlinearityService{
		forecastPort:  forecastPort,
		surrogatePort: surrogatePort,
		logger:        logger,
		workers:       workers,
	}
}

// TestRequest defines the inputs for one deterministic nonlinearity test
type TestRequest struct {
	Values        []float64     `json:"values"`
	Method        series.Method `json:"method"`
	NumSurrogates int           `json:"num_surr"`
	Period        int           `json:"period,omitempty"`
	Embedding     int           `json:"embedding"`
	Seed          int64         `json:"seed"`
}

// Run executes the full test: observed skill, surrogate generation,
// null distribution, empirical p-values. The same request always yields
// the same surrogate set and therefore the same p-values, regardless of
// worker count.
func (s *NonlinearityService) Run(ctx context.Context, req TestRequest) (*skill.TestResult, error) {
	startTime := time.Now()

	values, err := series.New(req.Values, 1)
	if err != nil {
		return nil, fmt.Errorf("input series: %w", err)
	}

	s.logger.Info("nonlinearity test started",
		zap.String("method", req.Method.String()),
		zap.Int("series_len", values.Len()),
		zap.Int("num_surrogates", req.NumSurrogates),
		zap.Int("embedding", req.Embedding),
		zap.Int64("seed", req.Seed),
	)

	profile, err := s.forecastPort.EvaluateThetaGrid(ctx, values, req.Embedding)
	if err != nil {
		return nil, fmt.Errorf("evaluate observed series: %w", err)
	}
	observed, err := skill.Compute(profile)
	if err != nil {
		return nil, fmt.Errorf("observed skill statistic: %w", err)
	}
	s.logger.Debug("observed skill computed",
		zap.Float64("delta_rho", observed.DeltaRho),
		zap.Float64("delta_mae", observed.DeltaMAE),
	)

	set, err := s.surrogatePort.Generate(ctx, values, ports.SurrogateRequest{
		Method: req.Method,
		Count:  req.NumSurrogates,
		Period: req.Period,
		Seed:   req.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("generate surrogates: %w", err)
	}

	null, err := s.evaluateNull(ctx, set, req.Embedding)
	if err != nil {
		return nil, err
	}

	rhoP, maeP := null.PValues(observed)

	result := &skill.TestResult{
		RunID:         core.NewRunID(),
		Method:        req.Method,
		DeltaRho:      observed.DeltaRho,
		DeltaMAE:      observed.DeltaMAE,
		DeltaRhoP:     rhoP,
		DeltaMAEP:     maeP,
		NumSurrogates: set.NumColumns(),
		Embedding:     req.Embedding,
		RuntimeMs:     time.Since(startTime).Milliseconds(),
		CreatedAt:     core.Now(),
	}

	s.logger.Info("nonlinearity test finished",
		zap.String("run_id", result.RunID.String()),
		zap.Float64("delta_rho", result.DeltaRho),
		zap.Float64("delta_mae", result.DeltaMAE),
		zap.Float64("delta_rho_p", result.DeltaRhoP),
		zap.Float64("delta_mae_p", result.DeltaMAEP),
		zap.Int64("runtime_ms", result.RuntimeMs),
	)

	return result, nil
}

// evaluateNull scores every surrogate column through the forecaster with
// bounded parallelism. Columns are independent and each goroutine writes
// only its own slot, so no aggregation lock is needed. The first failing
// column cancels the rest.
func (s *NonlinearityService) evaluateNull(ctx context.Context, set *series.SurrogateSet, embedding int) (skill.NullDistribution, error) {
	null := make(skill.NullDistribution, set.NumColumns())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for j := 0; j < set.NumColumns(); j++ {
		g.Go(func() error {
			profile, err := s.forecastPort.EvaluateThetaGrid(gctx, set.Column(j), embedding)
			if err != nil {
				return fmt.Errorf("surrogate column %d: %w", j, err)
			}
			stat, err := skill.Compute(profile)
			if err != nil {
				return fmt.Errorf("surrogate column %d: %w", j, err)
			}
			null[j] = stat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return null, nil
}
