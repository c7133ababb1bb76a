package surrogate

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"nonlin/domain/core"
	"nonlin/domain/series"
)

// spectralSurrogates implements Ebisuzaki phase randomization. Each
// column keeps the Fourier amplitudes of the input while its phases are
// redrawn uniformly: the power spectrum, and with it the linear
// autocorrelation structure, survives, while any nonlinear phase
// coupling is destroyed. Columns are rescaled to the sample standard
// deviation of the input; the mean is not restored and the DC amplitude
// stays zeroed.
func spectralSurrogates(ctx context.Context, values series.TimeSeries, streams []*rand.Rand) (*series.SurrogateSet, error) {
	n := len(values)
	if n < minSeriesLen {
		return nil, core.NewSeriesTooShortError(n, minSeriesLen)
	}
	if err := values.CheckFinite(); err != nil {
		return nil, err
	}

	sigma := stat.StdDev(values, nil)
	if sigma == 0 {
		return nil, fmt.Errorf("%w: phase randomization is undefined", core.ErrConstantSeries)
	}

	fft := fourier.NewCmplxFFT(n)
	seq := make([]complex128, n)
	for i, v := range values {
		seq[i] = complex(v, 0)
	}
	coeff := fft.Coefficients(nil, seq)

	// Amplitudes with the DC bin zeroed, so a random phase there cannot
	// shift the reconstructed mean.
	amp := make([]float64, n)
	for i, c := range coeff {
		amp[i] = cmplx.Abs(c)
	}
	amp[0] = 0

	set := series.NewSurrogateSet(n, len(streams))
	for j, rng := range streams {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}

		col := set.Column(j)
		phaseRandomize(fft, amp, rng, col)

		sd := stat.StdDev(col, nil)
		if sd == 0 {
			return nil, fmt.Errorf("%w: surrogate column %d collapsed", core.ErrConstantSeries, j)
		}
		for i := range col {
			col[i] = col[i] / sd * sigma
		}
	}
	return set, nil
}

// phaseRandomize reconstructs one series from the shared amplitude
// spectrum with fresh uniform phases, writing the real part of the
// inverse transform into dst.
//
// The phase vector is conjugate-symmetric (angle[n-k] = -angle[k]) so
// the inverse transform is real. For even n the Nyquist bin has no
// mirror partner; it is drawn separately as a real value
// sqrt(2)*|A|*cos(2*pi*U), which keeps its expected power while
// preserving symmetry.
func phaseRandomize(fft *fourier.CmplxFFT, amp []float64, rng *rand.Rand, dst []float64) {
	n := len(amp)
	n2 := n / 2

	angle := make([]float64, n)
	if n%2 == 0 {
		for k := 1; k < n2; k++ {
			angle[k] = 2 * math.Pi * rng.Float64()
			angle[n-k] = -angle[k]
		}
	} else {
		for k := 1; k <= n2; k++ {
			angle[k] = 2 * math.Pi * rng.Float64()
			angle[n-k] = -angle[k]
		}
	}

	spectrum := make([]complex128, n)
	for i := range spectrum {
		spectrum[i] = cmplx.Rect(amp[i], angle[i])
	}
	if n%2 == 0 {
		u := rng.Float64()
		spectrum[n2] = complex(math.Sqrt2*amp[n2]*math.Cos(2*math.Pi*u), 0)
	}

	out := fft.Sequence(nil, spectrum)
	for i := range dst {
		// Sequence is unnormalized; divide by n to undo the forward scaling.
		dst[i] = real(out[i]) / float64(n)
	}
}
