package testkit

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"nonlin/adapters/rng"
	"nonlin/domain/series"
	"nonlin/domain/skill"
	"nonlin/ports"
)

// TestKit provides deterministic fixtures for the test suites: seeded
// synthetic series with known structure and stand-in forecasters for
// exercising the driver without a fitted model.
type TestKit struct{}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{}
}

// RNGAdapter returns the production RNG adapter; it is already
// deterministic given a seed, so tests share it.
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewAdapter()
}

// NoisySine returns amplitude*sin(2*pi*i/period) plus Gaussian noise.
// A noisy sine is approximately linear dynamics, so nonlinearity tests
// against spectrum-preserving nulls should not reject it.
func (t *TestKit) NoisySine(n int, period, amplitude, noiseSD float64, seed uint64) series.TimeSeries {
	noise := distuv.Normal{Mu: 0, Sigma: noiseSD, Src: rand.NewPCG(seed, seed+1)}
	out := make(series.TimeSeries, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(i)/period)
		if noiseSD > 0 {
			out[i] += noise.Rand()
		}
	}
	return out
}

// LogisticMap iterates x <- r*x*(1-x), a strongly nonlinear recurrence
// that is chaotic for r near 4.
func (t *TestKit) LogisticMap(n int, r, x0 float64) series.TimeSeries {
	out := make(series.TimeSeries, n)
	x := x0
	for i := range out {
		out[i] = x
		x = r * x * (1 - x)
	}
	return out
}

// ARSeries returns a linear AR(1) process x_t = phi*x_{t-1} + noise
func (t *TestKit) ARSeries(n int, phi, noiseSD float64, seed uint64) series.TimeSeries {
	noise := distuv.Normal{Mu: 0, Sigma: noiseSD, Src: rand.NewPCG(seed, seed+7)}
	out := make(series.TimeSeries, n)
	x := 0.0
	for i := range out {
		x = phi*x + noise.Rand()
		out[i] = x
	}
	return out
}

// StubForecaster implements ports.ForecastPort with a canned profile,
// counting invocations. Safe for concurrent use.
type StubForecaster struct {
	Profile []skill.ThetaPoint
	Err     error

	mu    sync.Mutex
	calls int
}

// EvaluateThetaGrid returns the canned profile or error
func (f *StubForecaster) EvaluateThetaGrid(ctx context.Context, values series.TimeSeries, embedding int) ([]skill.ThetaPoint, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	profile := make([]skill.ThetaPoint, len(f.Profile))
	copy(profile, f.Profile)
	return profile, nil
}

// Calls reports how many times the forecaster was invoked
func (f *StubForecaster) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ForecastFunc adapts a plain function to ports.ForecastPort
type ForecastFunc func(ctx context.Context, values series.TimeSeries, embedding int) ([]skill.ThetaPoint, error)

// EvaluateThetaGrid invokes the adapted function
func (f ForecastFunc) EvaluateThetaGrid(ctx context.Context, values series.TimeSeries, embedding int) ([]skill.ThetaPoint, error) {
	return f(ctx, values, embedding)
}

// StubSurrogates implements ports.SurrogatePort with a canned set,
// recording the last request it served. Safe for concurrent use.
type StubSurrogates struct {
	Set *series.SurrogateSet
	Err error

	mu      sync.Mutex
	lastReq ports.SurrogateRequest
}

// Generate returns the canned set or error
func (s *StubSurrogates) Generate(ctx context.Context, values series.TimeSeries, req ports.SurrogateRequest) (*series.SurrogateSet, error) {
	s.mu.Lock()
	s.lastReq = req
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	return s.Set, nil
}

// LastRequest reports the most recent request passed to Generate
func (s *StubSurrogates) LastRequest() ports.SurrogateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}
