// ABOUTME: Converts raw user input into exact decimals within a magnitude limit
// ABOUTME: Accepts strings, decimals, Go numeric types, and fmt.Stringer values

package validator

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrValueTooLarge       = errors.New("value exceeds maximum allowed")
	ErrTooManyDecimals     = errors.New("too many fractional digits, maximum allowed")
)

// MaxFractionDigits bounds the fractional digits of an accepted operand.
// Exact arithmetic on a value such as 1e-50000000 would expand it in full.
const MaxFractionDigits = 1000

var ten = big.NewInt(10)

// ValidationError reports input that could not be accepted as an operand.
type ValidationError struct {
	Input any
	Limit decimal.Decimal
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrValueTooLarge) || errors.Is(e.Err, ErrTooManyDecimals) {
		return fmt.Sprintf("%v: %s", e.Err, e.Limit)
	}
	return fmt.Sprintf("%v: %v", e.Err, e.Input)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Number parses raw into a decimal and checks |value| <= max and that it
// has at most MaxFractionDigits fractional digits.
// The returned value is normalized (no trailing zeros in the coefficient).
func Number(raw any, max decimal.Decimal) (decimal.Decimal, error) {
	n, err := parse(raw)
	if err != nil {
		return decimal.Zero, &ValidationError{Input: raw, Err: ErrInvalidNumberFormat}
	}
	n = Normalize(n)
	if exceeds(n, max) {
		return decimal.Zero, &ValidationError{Input: raw, Limit: max, Err: ErrValueTooLarge}
	}
	if n.Exponent() < -MaxFractionDigits {
		return decimal.Zero, &ValidationError{
			Input: raw,
			Limit: decimal.NewFromInt(MaxFractionDigits),
			Err:   ErrTooManyDecimals,
		}
	}
	return n, nil
}

// Normalize returns d in its minimal representation: trailing zeros are
// moved from the coefficient into the exponent. The cost depends on the
// coefficient only, never on the exponent.
func Normalize(d decimal.Decimal) decimal.Decimal {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return decimal.Zero
	}
	exp := d.Exponent()
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(coef, ten, r)
		if r.Sign() != 0 {
			break
		}
		coef, q = q, coef
		exp++
	}
	return decimal.NewFromBigInt(coef, exp)
}

// exceeds reports |n| > max. Values whose leading digits sit at different
// powers of ten are ordered without rescaling, which for operands far
// apart in magnitude would build a coefficient as long as the gap.
func exceeds(n, max decimal.Decimal) bool {
	if n.IsZero() {
		return max.IsNegative()
	}
	if max.Sign() <= 0 {
		return true
	}
	mn, mm := magnitude(n), magnitude(max)
	switch {
	case mn < mm:
		return false
	case mn > mm:
		return true
	}
	return n.Abs().GreaterThan(max)
}

// magnitude returns the power of ten just above the leading digit of d.
func magnitude(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

func parse(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, ErrInvalidNumberFormat
		}
		return *v, nil
	case string:
		return parseString(v)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint, uint8, uint16, uint32, uint64:
		return parseString(fmt.Sprint(v))
	case float32:
		return parseString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		return parseString(strconv.FormatFloat(v, 'g', -1, 64))
	case fmt.Stringer:
		return parseString(v.String())
	default:
		return decimal.Zero, ErrInvalidNumberFormat
	}
}

func parseString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidNumberFormat
	}
	return decimal.NewFromString(s)
}
