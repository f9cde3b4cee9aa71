// ABOUTME: Sentinel errors for operation lookup and arithmetic failures
// ABOUTME: Callers match reasons with errors.Is; calculation wraps them as CalculationFailed

package operation

import "errors"

// Registry misuse.
var (
	ErrUnknownOperation     = errors.New("unknown operation")
	ErrInvalidOperationType = errors.New("operation must implement operation.Operation")
)

// Arithmetic failures reported by the built-in operations.
var (
	ErrDivisionByZero   = errors.New("division by zero is not allowed")
	ErrNegativeExponent = errors.New("negative exponents are not supported")
	ErrUndefinedPower   = errors.New("power of a negative base with a fractional exponent is undefined")
	ErrPowerOverflow    = errors.New("power result is too large")
	ErrZeroRoot         = errors.New("zero root is undefined")
	ErrComplexResult    = errors.New("cannot calculate root of negative number")
	ErrInvalidRoot      = errors.New("invalid root operation")
)
