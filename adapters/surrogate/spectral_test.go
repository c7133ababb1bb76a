package surrogate

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"nonlin/domain/core"
	"nonlin/domain/series"
	"nonlin/internal/testkit"
	"nonlin/ports"
)

// ampSpectrum computes |FFT| through go-dsp, a different transform
// implementation than the generator uses internally.
func ampSpectrum(values []float64) []float64 {
	coeff := fft.FFTReal(values)
	amp := make([]float64, len(coeff))
	for i, c := range coeff {
		amp[i] = cmplx.Abs(c)
	}
	return amp
}

func generateSpectral(t *testing.T, input series.TimeSeries, count int, seed int64) *series.SurrogateSet {
	t.Helper()
	kit := testkit.NewTestKit()
	gen := NewGenerator(kit.RNGAdapter())
	set, err := gen.Generate(context.Background(), input, ports.SurrogateRequest{
		Method: series.MethodEbisuzaki,
		Count:  count,
		Seed:   seed,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return set
}

func TestSpectralPreservesStdDev(t *testing.T) {
	kit := testkit.NewTestKit()

	tests := []struct {
		name  string
		input series.TimeSeries
	}{
		{"even length", kit.NoisySine(128, 16, 2.0, 0.5, 31)},
		{"odd length", kit.NoisySine(127, 16, 2.0, 0.5, 32)},
		{"minimal even length", series.TimeSeries{1.5, -0.5, 2.0, 0.25}},
		{"minimal odd length", series.TimeSeries{1.5, -0.5, 2.0, 0.25, -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigma := stat.StdDev(tt.input, nil)
			set := generateSpectral(t, tt.input, 8, 7)

			for j := 0; j < set.NumColumns(); j++ {
				sd := stat.StdDev(set.Column(j), nil)
				if rel := math.Abs(sd-sigma) / sigma; rel > 1e-9 {
					t.Errorf("Column %d stddev %v differs from original %v (relative %v)",
						j, sd, sigma, rel)
				}
			}
		})
	}
}

func TestSpectralPreservesAmplitudeSpectrumOddLength(t *testing.T) {
	kit := testkit.NewTestKit()
	input := kit.NoisySine(255, 17, 2.0, 0.8, 41)

	// Odd lengths have no Nyquist bin, so every non-DC amplitude must
	// carry over exactly up to rounding.
	origAmp := ampSpectrum(input)
	maxAmp := 0.0
	for _, a := range origAmp {
		if a > maxAmp {
			maxAmp = a
		}
	}

	set := generateSpectral(t, input, 5, 13)
	for j := 0; j < set.NumColumns(); j++ {
		colAmp := ampSpectrum(set.Column(j))

		if colAmp[0] > 1e-8*maxAmp {
			t.Errorf("Column %d DC amplitude %v should be near zero", j, colAmp[0])
		}
		for k := 1; k < len(origAmp); k++ {
			if diff := math.Abs(colAmp[k] - origAmp[k]); diff > 1e-9*maxAmp+1e-9 {
				t.Errorf("Column %d amplitude at bin %d differs: %v vs %v",
					j, k, colAmp[k], origAmp[k])
			}
		}
	}
}

func TestSpectralPreservesAmplitudeShapeEvenLength(t *testing.T) {
	kit := testkit.NewTestKit()
	input := kit.NoisySine(256, 16, 2.0, 0.8, 43)
	n := input.Len()

	// The redrawn Nyquist bin and the variance rescale multiply all
	// amplitudes by a common factor, so compare shapes with DC and
	// Nyquist excluded.
	normalize := func(amp []float64) []float64 {
		sumSq := 0.0
		for k := 1; k < len(amp); k++ {
			if k == n/2 {
				continue
			}
			sumSq += amp[k] * amp[k]
		}
		norm := math.Sqrt(sumSq)
		out := make([]float64, len(amp))
		for k := range amp {
			out[k] = amp[k] / norm
		}
		return out
	}

	origShape := normalize(ampSpectrum(input))
	set := generateSpectral(t, input, 5, 19)

	for j := 0; j < set.NumColumns(); j++ {
		colShape := normalize(ampSpectrum(set.Column(j)))
		for k := 1; k < n; k++ {
			if k == n/2 {
				continue
			}
			if diff := math.Abs(colShape[k] - origShape[k]); diff > 1e-9 {
				t.Errorf("Column %d normalized amplitude at bin %d differs: %v vs %v",
					j, k, colShape[k], origShape[k])
			}
		}
	}
}

func TestSpectralMeanNotRestored(t *testing.T) {
	kit := testkit.NewTestKit()
	base := kit.NoisySine(100, 10, 1.0, 0.3, 51)
	input := base.Clone()
	for i := range input {
		input[i] += 50 // large offset the zeroed DC bin discards
	}

	set := generateSpectral(t, input, 6, 23)
	for j := 0; j < set.NumColumns(); j++ {
		mean := stat.Mean(set.Column(j), nil)
		if math.Abs(mean) > 1e-6 {
			t.Errorf("Column %d mean %v should be near zero, not the input mean", j, mean)
		}
	}
}

func TestSpectralPreservesLagOneAutocorrelation(t *testing.T) {
	kit := testkit.NewTestKit()
	input := kit.ARSeries(512, 0.8, 1.0, 61)

	lag1 := func(x []float64) float64 {
		return stat.Correlation(x[:len(x)-1], x[1:], nil)
	}

	origACF := lag1(input)
	if origACF < 0.6 {
		t.Fatalf("Fixture AR(1) series should be strongly autocorrelated, got %v", origACF)
	}

	set := generateSpectral(t, input, 10, 29)
	for j := 0; j < set.NumColumns(); j++ {
		colACF := lag1(set.Column(j))
		if math.Abs(colACF-origACF) > 0.15 {
			t.Errorf("Column %d lag-1 autocorrelation %v drifted from original %v",
				j, colACF, origACF)
		}
	}
}

func TestSpectralInputValidation(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewTestKit()
	gen := NewGenerator(kit.RNGAdapter())

	tests := []struct {
		name    string
		input   series.TimeSeries
		wantErr error
	}{
		{"NaN value", series.TimeSeries{1, math.NaN(), 3, 4}, core.ErrNonFinite},
		{"infinite value", series.TimeSeries{1, 2, math.Inf(-1), 4}, core.ErrNonFinite},
		{"too short", series.TimeSeries{1, 2, 3}, core.ErrSeriesTooShort},
		{"constant", series.TimeSeries{2, 2, 2, 2, 2}, core.ErrConstantSeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(ctx, tt.input, ports.SurrogateRequest{
				Method: series.MethodEbisuzaki,
				Count:  3,
				Seed:   1,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
