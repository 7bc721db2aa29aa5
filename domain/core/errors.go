package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parameter errors
	ErrInvalidParameter     = errors.New("invalid sample parameter")
	ErrUnsupportedDirection = errors.New("unsupported alternative hypothesis")

	// Search errors
	ErrUnattainableResult = errors.New("no deviation count reaches the requested confidence")
)

// Error constructors with context
func NewInvalidParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

func NewUnsupportedDirectionError(literal string) error {
	return fmt.Errorf("%w: %q (expected \"less\" or \"greater\")", ErrUnsupportedDirection, literal)
}

func NewUnattainableError(direction string, n int, trd, ovr float64) error {
	return fmt.Errorf("%w: direction=%s n=%d trd=%g ovr=%g", ErrUnattainableResult, direction, n, trd, ovr)
}

// Error checking helpers
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsUnsupportedDirection(err error) bool {
	return errors.Is(err, ErrUnsupportedDirection)
}

func IsUnattainable(err error) bool {
	return errors.Is(err, ErrUnattainableResult)
}

// IsParameterError reports whether err stems from caller input rather than the search itself.
func IsParameterError(err error) bool {
	return IsInvalidParameter(err) || IsUnsupportedDirection(err)
}
