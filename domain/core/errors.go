package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrNonFinite      = errors.New("series contains non-finite values")
	ErrSeriesTooShort = errors.New("series too short")
	ErrConstantSeries = errors.New("series is constant")
	ErrInvalidCount   = errors.New("surrogate count must be positive")
	ErrInvalidPeriod  = errors.New("invalid seasonal period")

	// Method selection errors
	ErrUnknownMethod = errors.New("unknown surrogate method")

	// Skill statistic errors
	ErrMissingLinearTheta = errors.New("theta grid does not include the linear setting")
	ErrNonFiniteSkill     = errors.New("skill profile contains non-finite values")

	// Forecaster errors
	ErrInvalidOptions   = errors.New("invalid forecaster options")
	ErrInsufficientData = errors.New("insufficient data for embedding")
)

// Error constructors with context
func NewNonFiniteError(index int, value float64) error {
	return fmt.Errorf("%w: value %v at index %d", ErrNonFinite, value, index)
}

func NewSeriesTooShortError(n, min int) error {
	return fmt.Errorf("%w: length %d, need at least %d", ErrSeriesTooShort, n, min)
}

func NewUnknownMethodError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

func NewInvalidPeriodError(period, n int) error {
	return fmt.Errorf("%w: period %d with series length %d", ErrInvalidPeriod, period, n)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrNonFinite) ||
		errors.Is(err, ErrSeriesTooShort) ||
		errors.Is(err, ErrConstantSeries) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrInvalidPeriod)
}

func IsSkillError(err error) bool {
	return errors.Is(err, ErrMissingLinearTheta) ||
		errors.Is(err, ErrNonFiniteSkill)
}

func IsForecasterError(err error) bool {
	return errors.Is(err, ErrInvalidOptions) ||
		errors.Is(err, ErrInsufficientData)
}
