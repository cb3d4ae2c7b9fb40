package calculation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for negative or non-finite amounts and
	// rates, a tax deduction outside [0, 1], or a grace period longer than the term.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateRate is returned when the annuity formula is undefined for
	// the interest rate at the start of an amortization phase (e.g. a zero rate).
	ErrDegenerateRate = errors.New("degenerate interest rate")

	// ErrIndexOutOfRange is returned for an installment outside [0, term].
	ErrIndexOutOfRange = errors.New("installment index out of range")
)

func invalidParameter(name string, value any, constraint string) error {
	return fmt.Errorf("%w: %s = %v, %s", ErrInvalidParameter, name, value, constraint)
}

func indexOutOfRange(n, term int) error {
	return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, n, term)
}
