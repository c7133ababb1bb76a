package skill

import (
	"nonlin/domain/core"
	"nonlin/domain/series"
)

// TestResult is the immutable outcome of one nonlinearity test run.
// Embedding is the dimension the forecaster was configured with,
// propagated through for the record rather than recomputed.
type TestResult struct {
	RunID         core.RunID     `json:"run_id"`
	Method        series.Method  `json:"method"`
	DeltaRho      float64        `json:"delta_rho"`
	DeltaMAE      float64        `json:"delta_mae"`
	DeltaRhoP     float64        `json:"delta_rho_p_value"`
	DeltaMAEP     float64        `json:"delta_mae_p_value"`
	NumSurrogates int            `json:"num_surr"`
	Embedding     int            `json:"embedding"`
	RuntimeMs     int64          `json:"runtime_ms"`
	CreatedAt     core.Timestamp `json:"created_at"`
}

// Significant reports whether both deltas beat the null at level alpha
func (r *TestResult) Significant(alpha float64) bool {
	return r.DeltaRhoP < alpha && r.DeltaMAEP < alpha
}
