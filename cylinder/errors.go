package cylinder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a scatterer, angle array or field parameter is
	// rejected before any recurrence runs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNumericalInstability is returned when a coefficient denominator vanishes
	// (resonance) or a coefficient is not finite.
	ErrNumericalInstability = errors.New("numerical instability")
)

// InstabilityError reports the multipole order at which a coefficient could not be formed.
type InstabilityError struct {
	Order       int        // Multipole order, starting at 1
	Coefficient string     // "an" or "bn"
	Denominator complex128 // Offending denominator
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%s at order %d: denominator %v is numerically zero", e.Coefficient, e.Order, e.Denominator)
}

func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
