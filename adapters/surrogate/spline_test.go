package surrogate

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"nonlin/domain/core"
	"nonlin/internal/testkit"
)

func TestSmoothingSplineReproducesLinearTargets(t *testing.T) {
	m := 30
	y := make([]float64, m)
	w := make([]float64, m)
	for i := range y {
		y[i] = 2 + 0.5*float64(i)
		w[i] = 1
	}

	// Linear data has zero curvature, so the penalty term vanishes and
	// the fit passes through the targets at every smoothing level.
	fitted, err := fitSmoothingSpline(y, w, 0, float64(m))
	if err != nil {
		t.Fatalf("fitSmoothingSpline failed: %v", err)
	}

	for i := range fitted {
		if math.Abs(fitted[i]-y[i]) > 1e-7 {
			t.Errorf("Fitted value at %d is %v, want %v", i, fitted[i], y[i])
		}
	}
}

func TestSmoothingSplineShrinksNoise(t *testing.T) {
	kit := testkit.NewTestKit()
	y := kit.NoisySine(36, 9, 0.0, 1.0, 97)
	w := make([]float64, len(y))
	for i := range w {
		w[i] = 1
	}

	fitted, err := fitSmoothingSpline(y, w, 0, float64(len(y)))
	if err != nil {
		t.Fatalf("fitSmoothingSpline failed: %v", err)
	}

	sdY := stat.StdDev(y, nil)
	sdFit := stat.StdDev(fitted, nil)
	if sdFit >= 0.8*sdY {
		t.Errorf("Fit of pure noise should flatten: stddev %v vs input %v", sdFit, sdY)
	}
}

func TestSmoothingSplineRejectsShortInput(t *testing.T) {
	y := []float64{1, 2, 3}
	w := []float64{1, 1, 1}

	_, err := fitSmoothingSpline(y, w, 0, 3)
	if !errors.Is(err, core.ErrSeriesTooShort) {
		t.Errorf("Expected %v, got %v", core.ErrSeriesTooShort, err)
	}
}

func TestPenaltyMatrixAnnihilatesLinear(t *testing.T) {
	m := 12
	penalty, err := penaltyMatrix(m)
	if err != nil {
		t.Fatalf("penaltyMatrix failed: %v", err)
	}

	for i := 0; i < m; i++ {
		ki := 0.0
		kx := 0.0
		for j := 0; j < m; j++ {
			ki += penalty.At(i, j)
			kx += penalty.At(i, j) * float64(j)
		}
		if math.Abs(ki) > 1e-9 {
			t.Errorf("Row %d of penalty times constant vector is %v, want 0", i, ki)
		}
		if math.Abs(kx) > 1e-9 {
			t.Errorf("Row %d of penalty times linear vector is %v, want 0", i, kx)
		}
	}
}

func TestPenaltyMatrixIsSymmetric(t *testing.T) {
	m := 10
	penalty, err := penaltyMatrix(m)
	if err != nil {
		t.Fatalf("penaltyMatrix failed: %v", err)
	}

	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			if diff := math.Abs(penalty.At(i, j) - penalty.At(j, i)); diff > 1e-9 {
				t.Errorf("Penalty matrix asymmetric at (%d,%d): %v vs %v",
					i, j, penalty.At(i, j), penalty.At(j, i))
			}
		}
	}
}
