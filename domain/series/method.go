package series

import (
	"nonlin/domain/core"
)

// Method selects the null model used to synthesize surrogate series
type Method string

const (
	// MethodRandomShuffle permutes the series, destroying all temporal structure
	MethodRandomShuffle Method = "random_shuffle"
	// MethodEbisuzaki randomizes Fourier phases, preserving the power spectrum
	MethodEbisuzaki Method = "ebisuzaki"
	// MethodSeasonal preserves the periodic cycle and permutes residuals
	MethodSeasonal Method = "seasonal"
)

// Methods lists every recognized surrogate method
func Methods() []Method {
	return []Method{MethodRandomShuffle, MethodEbisuzaki, MethodSeasonal}
}

// ParseMethod validates a method name, rejecting unrecognized values at
// construction time rather than at generation time.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodRandomShuffle, MethodEbisuzaki, MethodSeasonal:
		return Method(s), nil
	}
	return "", core.NewUnknownMethodError(s)
}

// String returns the method name
func (m Method) String() string {
	return string(m)
}

// Valid reports whether the method is one of the recognized values
func (m Method) Valid() bool {
	_, err := ParseMethod(string(m))
	return err == nil
}

// RequiresPeriod reports whether generation consumes the seasonal period
func (m Method) RequiresPeriod() bool {
	return m == MethodSeasonal
}
