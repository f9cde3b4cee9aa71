// ABOUTME: Binary arithmetic operations over exact decimals
// ABOUTME: Six stateless built-ins: add, subtract, multiply, divide, power, root

package operation

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// DivisionPrecision is the number of fractional digits kept by Division
	// and by Power with a fractional exponent.
	DivisionPrecision int32 = 28

	// RootPrecision is the number of fractional digits a Root result is
	// rounded to.
	RootPrecision int32 = 18

	// rootWorkPrecision is the working precision used while computing roots,
	// wide enough that rounding to RootPrecision is stable.
	rootWorkPrecision int32 = 30

	// MaxPowerDigits bounds the estimated number of digits, integer and
	// fractional, of a Power result.
	MaxPowerDigits = 100_000
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Operation is a named, stateless binary transformation.
type Operation interface {
	// Name returns the display name recorded in history (e.g. "Addition").
	Name() string
	// Execute applies the operation to a and b.
	Execute(a, b decimal.Decimal) (decimal.Decimal, error)
}

// Addition computes a + b.
type Addition struct{}

func (Addition) Name() string { return "Addition" }

func (Addition) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	return a.Add(b), nil
}

// Subtraction computes a - b.
type Subtraction struct{}

func (Subtraction) Name() string { return "Subtraction" }

func (Subtraction) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	return a.Sub(b), nil
}

// Multiplication computes a * b.
type Multiplication struct{}

func (Multiplication) Name() string { return "Multiplication" }

func (Multiplication) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	return a.Mul(b), nil
}

// Division computes a / b rounded to DivisionPrecision fractional digits.
type Division struct{}

func (Division) Name() string { return "Division" }

func (Division) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.DivRound(b, DivisionPrecision), nil
}

// Power computes a ^ b for non-negative b. Integer exponents are exact.
// Results estimated to need more than MaxPowerDigits digits fail with
// ErrPowerOverflow before any work is done.
type Power struct{}

func (Power) Name() string { return "Power" }

func (Power) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsNegative() {
		return decimal.Zero, ErrNegativeExponent
	}
	if b.IsZero() {
		return one, nil
	}
	integer := b.IsInteger()
	if a.IsNegative() && !integer {
		return decimal.Zero, ErrUndefinedPower
	}
	if a.IsZero() {
		return decimal.Zero, nil
	}
	if powerDigits(a, b) > MaxPowerDigits {
		return decimal.Zero, ErrPowerOverflow
	}
	if integer {
		return a.Pow(b), nil
	}
	res, err := a.PowWithPrecision(b, DivisionPrecision)
	if err != nil {
		return decimal.Zero, ErrUndefinedPower
	}
	return res.Round(DivisionPrecision), nil
}

// powerDigits estimates an upper bound on the digits written out for a ^ b.
// With a = c * 10^e the result has about b*log10|c| coefficient digits
// shifted by b*e places.
func powerDigits(a, b decimal.Decimal) float64 {
	w := log10Abs(a.Coefficient()) + math.Abs(float64(a.Exponent()))
	if w == 0 {
		// |a| == 1
		return 0
	}
	return b.InexactFloat64() * w
}

func log10Abs(c *big.Int) float64 {
	if c.BitLen() < 1000 {
		f, _ := new(big.Float).SetInt(c).Float64()
		return math.Log10(math.Abs(f))
	}
	return float64(c.BitLen()) * math.Log10(2)
}

// Root computes the b-th root of a, rounded to RootPrecision fractional digits.
type Root struct{}

func (Root) Name() string { return "Root" }

func (Root) Execute(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrZeroRoot
	}
	if a.IsNegative() && b.IsInteger() && b.Mod(two).IsZero() {
		return decimal.Zero, ErrComplexResult
	}

	exp := one.DivRound(b, rootWorkPrecision)
	if exp.IsZero() {
		// b is too large for the working precision: a^0.
		return decimal.Zero, ErrInvalidRoot
	}

	res, err := a.PowWithPrecision(exp, rootWorkPrecision)
	if err != nil {
		return decimal.Zero, ErrInvalidRoot
	}
	return res.Round(RootPrecision), nil
}

// Defaults returns the built-in operations keyed by their command name.
func Defaults() map[string]Operation {
	return map[string]Operation{
		"add":      Addition{},
		"subtract": Subtraction{},
		"multiply": Multiplication{},
		"divide":   Division{},
		"power":    Power{},
		"root":     Root{},
	}
}
