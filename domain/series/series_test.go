package series

import (
	"errors"
	"math"
	"testing"

	"nonlin/domain/core"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected Method
		hasError bool
	}{
		{"random_shuffle", MethodRandomShuffle, false},
		{"ebisuzaki", MethodEbisuzaki, false},
		{"seasonal", MethodSeasonal, false},
		{"fourier", "", true},
		{"Ebisuzaki", "", true},
		{"", "", true},
		{"shuffle", "", true},
	}

	for _, test := range tests {
		result, err := ParseMethod(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for input %q, but got none", test.input)
			}
			if !errors.Is(err, core.ErrUnknownMethod) {
				t.Errorf("Expected ErrUnknownMethod for input %q, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for input %q: %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestMethodRequiresPeriod(t *testing.T) {
	if MethodRandomShuffle.RequiresPeriod() || MethodEbisuzaki.RequiresPeriod() {
		t.Error("Only the seasonal method should require a period")
	}
	if !MethodSeasonal.RequiresPeriod() {
		t.Error("Seasonal method should require a period")
	}
}

func TestNewLengthValidation(t *testing.T) {
	_, err := New([]float64{1, 2, 3}, 4)
	if !errors.Is(err, core.ErrSeriesTooShort) {
		t.Errorf("Expected ErrSeriesTooShort, got %v", err)
	}

	ts, err := New([]float64{1, 2, 3, 4}, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ts.Len() != 4 {
		t.Errorf("Expected length 4, got %d", ts.Len())
	}
}

func TestNewCopiesInput(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	ts, err := New(values, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	values[0] = 99
	if ts[0] != 1 {
		t.Error("Series should not alias the caller's slice")
	}
}

func TestCheckFinite(t *testing.T) {
	tests := []struct {
		name     string
		values   TimeSeries
		hasError bool
	}{
		{"all finite", TimeSeries{1, 2, 3, 4}, false},
		{"contains NaN", TimeSeries{1, math.NaN(), 3, 4}, true},
		{"contains +Inf", TimeSeries{1, 2, math.Inf(1), 4}, true},
		{"contains -Inf", TimeSeries{math.Inf(-1), 2, 3, 4}, true},
		{"empty", TimeSeries{}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.values.CheckFinite()
			if test.hasError {
				if !errors.Is(err, core.ErrNonFinite) {
					t.Errorf("Expected ErrNonFinite, got %v", err)
				}
				if test.values.Finite() {
					t.Error("Finite() should report false")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !test.values.Finite() {
				t.Error("Finite() should report true")
			}
		})
	}
}

func TestCloneIndependence(t *testing.T) {
	ts := TimeSeries{1, 2, 3, 4}
	clone := ts.Clone()
	clone[0] = 99
	if ts[0] != 1 {
		t.Error("Clone should not share backing storage with the original")
	}
}

func TestNewSurrogateSetShape(t *testing.T) {
	set := NewSurrogateSet(10, 3)
	if set.Rows != 10 {
		t.Errorf("Expected 10 rows, got %d", set.Rows)
	}
	if set.NumColumns() != 3 {
		t.Errorf("Expected 3 columns, got %d", set.NumColumns())
	}
	for j := 0; j < set.NumColumns(); j++ {
		if len(set.Column(j)) != 10 {
			t.Errorf("Column %d should have 10 rows, got %d", j, len(set.Column(j)))
		}
	}
}
