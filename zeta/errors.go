package zeta

import (
	"errors"
	"fmt"

	"github.com/riemann-research/hurwitz-hunter/mpc"
)

var (
	// ErrDivisionByZero is returned when a reciprocal or divide meets an
	// exactly zero value, e.g. the polylog at z = 1 or Gamma at a pole.
	ErrDivisionByZero = mpc.ErrDivisionByZero

	// ErrPrecisionExhausted is returned when a series could not reach the
	// requested precision, even after escalating its truncation order.
	ErrPrecisionExhausted = errors.New("precision exhausted")

	// ErrDomainUnsupported is returned for arguments outside the supported
	// domain: the pole s = 1, q outside (0, 1], |z| > 1 for the polylog.
	ErrDomainUnsupported = errors.New("domain unsupported")

	// ErrRecursionLimit is returned when the duplication recursion of the
	// periodic zeta exceeds Options.MaxDepth. It matches
	// ErrPrecisionExhausted under errors.Is.
	ErrRecursionLimit = fmt.Errorf("duplication recursion limit: %w", ErrPrecisionExhausted)
)

func domainError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomainUnsupported, fmt.Sprintf(format, args...))
}
