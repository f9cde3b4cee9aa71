// ABOUTME: Tests for operand validation and normalization
// ABOUTME: Covers parsing of supported input types, magnitude limits, and error kinds

package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var limit = decimal.RequireFromString("1e999")

func TestNumber_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"integer string", "42", "42"},
		{"padded string", "  7 ", "7"},
		{"decimal string", "3.14", "3.14"},
		{"trailing zeros", "2.500", "2.5"},
		{"negative", "-8", "-8"},
		{"exponent", "1.5e3", "1500"},
		{"int", 9, "9"},
		{"int64", int64(-12), "-12"},
		{"uint", uint(5), "5"},
		{"float64", 0.25, "0.25"},
		{"decimal", decimal.NewFromFloat(1.5), "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Number(tt.raw, limit)
			if err != nil {
				t.Fatalf("Number(%v) error: %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("Number(%v) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNumber_InvalidFormat(t *testing.T) {
	t.Parallel()

	for _, raw := range []any{"abc", "", "   ", "1,000", "bad_input", struct{}{}, nil} {
		_, err := Number(raw, limit)
		if !errors.Is(err, ErrInvalidNumberFormat) {
			t.Errorf("Number(%v) error = %v, want ErrInvalidNumberFormat", raw, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Number(%v) error should be a *ValidationError, got %T", raw, err)
		}
	}
}

func TestNumber_TooLarge(t *testing.T) {
	t.Parallel()

	max := decimal.NewFromInt(100)
	for _, raw := range []any{"101", "-101", 1000} {
		_, err := Number(raw, max)
		if !errors.Is(err, ErrValueTooLarge) {
			t.Errorf("Number(%v) error = %v, want ErrValueTooLarge", raw, err)
		}
	}

	got, err := Number("-100", max)
	if err != nil {
		t.Fatalf("boundary value should be accepted: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("Number(-100) = %s", got)
	}
}

func TestNumber_TinyMagnitude(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := Number("1e-50000000", limit)
	if !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("error = %v, want ErrTooManyDecimals", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("rejecting 1e-50000000 took %v", elapsed)
	}

	got, err := Number("1e-1000", limit)
	if err != nil {
		t.Fatalf("1e-1000 should be accepted: %v", err)
	}
	if !got.Equal(decimal.New(1, -1000)) {
		t.Errorf("Number(1e-1000) = %s", got)
	}
	if _, err := Number("1.5e-1000", limit); !errors.Is(err, ErrTooManyDecimals) {
		t.Errorf("1.5e-1000 error = %v, want ErrTooManyDecimals", err)
	}
}

func TestNumber_HugeMagnitudeGap(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if _, err := Number("1e50000000", limit); !errors.Is(err, ErrValueTooLarge) {
		t.Errorf("1e50000000 error = %v, want ErrValueTooLarge", err)
	}
	if _, err := Number("5", decimal.RequireFromString("1e50000000")); err != nil {
		t.Errorf("5 under 1e50000000: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("magnitude checks took %v", elapsed)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      decimal.Decimal
		wantStr string
		wantExp int32
	}{
		{decimal.RequireFromString("1.500"), "1.5", -1},
		{decimal.RequireFromString("1500"), "1500", 2},
		{decimal.RequireFromString("-0.0"), "0", 0},
		{decimal.RequireFromString("7"), "7", 0},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if got.String() != tt.wantStr || got.Exponent() != tt.wantExp {
			t.Errorf("Normalize(%s) = %s (exp %d), want %s (exp %d)",
				tt.in, got, got.Exponent(), tt.wantStr, tt.wantExp)
		}
	}

	start := time.Now()
	got := Normalize(decimal.New(1, -50000000))
	if !got.Equal(decimal.New(1, -50000000)) || got.Exponent() != -50000000 {
		t.Errorf("Normalize(1e-50000000) exponent = %d", got.Exponent())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Normalize(1e-50000000) took %v", elapsed)
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	_, err := Number("oops", limit)
	if got, want := err.Error(), "invalid number format: oops"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	_, err = Number("11", decimal.NewFromInt(10))
	if got, want := err.Error(), "value exceeds maximum allowed: 10"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	_, err = Number("1e-1001", limit)
	if got, want := err.Error(), "too many fractional digits, maximum allowed: 1000"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
