// ABOUTME: Immutable record of one computed binary operation
// ABOUTME: Result is computed at construction; equality ignores the timestamp

package calculation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mauromedda/calc-go/internal/operation"
)

// ErrCorruptRecord reports a serialized record whose fields cannot be parsed.
var ErrCorruptRecord = errors.New("invalid calculation data")

// Error is returned when an operation cannot produce a result. It is
// distinct from input validation errors; the reason is available via
// errors.Is (e.g. operation.ErrDivisionByZero).
type Error struct {
	Operation string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Calculation is one completed operation. Values never change after New.
type Calculation struct {
	operation string
	operand1  decimal.Decimal
	operand2  decimal.Decimal
	result    decimal.Decimal
	timestamp time.Time
}

// New resolves name in reg and computes the calculation.
func New(reg *operation.Registry, name string, a, b decimal.Decimal) (*Calculation, error) {
	op, err := reg.Create(name)
	if err != nil {
		return nil, &Error{Operation: name, Err: err}
	}
	return Compute(op, a, b)
}

// Compute applies op to a and b and records the outcome with the current time.
func Compute(op operation.Operation, a, b decimal.Decimal) (*Calculation, error) {
	result, err := op.Execute(a, b)
	if err != nil {
		return nil, &Error{Operation: op.Name(), Err: err}
	}
	return &Calculation{
		operation: op.Name(),
		operand1:  a,
		operand2:  b,
		result:    result,
		timestamp: time.Now(),
	}, nil
}

// Operation returns the display name of the operation.
func (c *Calculation) Operation() string { return c.operation }

// Operand1 returns the first operand.
func (c *Calculation) Operand1() decimal.Decimal { return c.operand1 }

// Operand2 returns the second operand.
func (c *Calculation) Operand2() decimal.Decimal { return c.operand2 }

// Result returns the computed result.
func (c *Calculation) Result() decimal.Decimal { return c.result }

// Timestamp returns when the calculation was created.
func (c *Calculation) Timestamp() time.Time { return c.timestamp }

// Equal reports whether c and other hold the same operation, operands and
// result. Timestamps are not compared.
func (c *Calculation) Equal(other *Calculation) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.operation == other.operation &&
		c.operand1.Equal(other.operand1) &&
		c.operand2.Equal(other.operand2) &&
		c.result.Equal(other.result)
}

// FormatResult renders the result rounded half away from zero to precision
// fractional digits, without trailing zeros.
func (c *Calculation) FormatResult(precision int32) string {
	return c.result.Round(precision).String()
}

// String renders the calculation as "Operation(a, b) = result".
func (c *Calculation) String() string {
	return fmt.Sprintf("%s(%s, %s) = %s", c.operation, c.operand1, c.operand2, c.result)
}
