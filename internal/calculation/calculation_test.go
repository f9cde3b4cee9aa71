// ABOUTME: Tests for calculation construction, formatting, equality and records
// ABOUTME: Covers error kinds, record round-trip, and the recompute-on-load warning

package calculation

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	clog "github.com/mauromedda/calc-go/internal/log"
	"github.com/mauromedda/calc-go/internal/operation"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustNew(t *testing.T, name, a, b string) *Calculation {
	t.Helper()
	c, err := New(operation.NewRegistry(), name, d(a), d(b))
	if err != nil {
		t.Fatalf("New(%s, %s, %s): %v", name, a, b, err)
	}
	return c
}

func TestNew_Results(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"Addition", "7", "4", "11"},
		{"Subtraction", "10", "6", "4"},
		{"Multiplication", "3", "5", "15"},
		{"Division", "9", "3", "3"},
		{"Power", "3", "2", "9"},
		{"Root", "81", "4", "3"},
		{"add", "1", "2", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mustNew(t, tt.name, tt.a, tt.b)
			if !c.Result().Equal(d(tt.want)) {
				t.Errorf("result = %s, want %s", c.Result(), tt.want)
			}
			if c.Timestamp().IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestNew_OperationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want error
	}{
		{"Division", "6", "0", operation.ErrDivisionByZero},
		{"Power", "5", "-2", operation.ErrNegativeExponent},
		{"Root", "-25", "2", operation.ErrComplexResult},
		{"Square", "5", "5", operation.ErrUnknownOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(operation.NewRegistry(), tt.name, d(tt.a), d(tt.b))
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Errorf("error should be *calculation.Error, got %T", err)
			}
		})
	}
}

func TestRecord_Fields(t *testing.T) {
	t.Parallel()

	c := mustNew(t, "Addition", "10", "15")
	rec := c.Record()
	want := Record{
		Operation: "Addition",
		Operand1:  "10",
		Operand2:  "15",
		Result:    "25",
		Timestamp: c.Timestamp().Format(time.RFC3339Nano),
	}
	if rec != want {
		t.Errorf("Record() = %+v, want %+v", rec, want)
	}
}

func TestFromRecord(t *testing.T) {
	t.Parallel()

	rec := Record{
		Operation: "Addition",
		Operand1:  "12",
		Operand2:  "18",
		Result:    "30",
		Timestamp: "2025-03-01T10:20:30.123456",
	}
	c, err := FromRecord(operation.NewRegistry(), rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if c.Operation() != "Addition" {
		t.Errorf("Operation() = %q", c.Operation())
	}
	if !c.Operand1().Equal(d("12")) || !c.Operand2().Equal(d("18")) || !c.Result().Equal(d("30")) {
		t.Errorf("unexpected values: %s", c)
	}
	if c.Timestamp().Year() != 2025 || c.Timestamp().Nanosecond() != 123456000 {
		t.Errorf("timestamp = %v", c.Timestamp())
	}
}

func TestFromRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	reg := operation.NewRegistry()
	for _, c := range []*Calculation{
		mustNew(t, "divide", "1", "3"),
		mustNew(t, "multiply", "-2.5", "0.004"),
		mustNew(t, "root", "2", "2"),
		mustNew(t, "power", "1.1", "10"),
	} {
		got, err := FromRecord(reg, c.Record())
		if err != nil {
			t.Fatalf("FromRecord(%s): %v", c, err)
		}
		if !got.Equal(c) {
			t.Errorf("round trip = %s, want %s", got, c)
		}
		if !got.Timestamp().Equal(c.Timestamp()) {
			t.Errorf("timestamp = %v, want %v", got.Timestamp(), c.Timestamp())
		}
	}
}

func TestFromRecord_Corrupt(t *testing.T) {
	t.Parallel()

	base := Record{Operation: "Addition", Operand1: "1", Operand2: "2", Result: "3", Timestamp: time.Now().Format(time.RFC3339Nano)}
	tests := map[string]func(*Record){
		"operand1":  func(r *Record) { r.Operand1 = "oops" },
		"operand2":  func(r *Record) { r.Operand2 = "" },
		"result":    func(r *Record) { r.Result = "five" },
		"timestamp": func(r *Record) { r.Timestamp = "yesterday" },
	}

	for name, mutate := range tests {
		rec := base
		mutate(&rec)
		_, err := FromRecord(operation.NewRegistry(), rec)
		if !errors.Is(err, ErrCorruptRecord) {
			t.Errorf("%s: error = %v, want ErrCorruptRecord", name, err)
		}
	}
}

func TestFromRecord_UnknownOperation(t *testing.T) {
	t.Parallel()

	rec := Record{Operation: "Modulo", Operand1: "1", Operand2: "2", Result: "1", Timestamp: time.Now().Format(time.RFC3339Nano)}
	_, err := FromRecord(operation.NewRegistry(), rec)
	if !errors.Is(err, operation.ErrUnknownOperation) {
		t.Errorf("error = %v, want ErrUnknownOperation", err)
	}
}

func TestFromRecord_ResultMismatchWarns(t *testing.T) {
	var buf bytes.Buffer
	clog.SetOutput(&buf)
	t.Cleanup(func() { clog.SetOutput(os.Stderr) })

	rec := Record{
		Operation: "Addition",
		Operand1:  "4",
		Operand2:  "6",
		Result:    "20",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}
	c, err := FromRecord(operation.NewRegistry(), rec)
	if err != nil {
		t.Fatalf("mismatch must not fail: %v", err)
	}
	if !c.Result().Equal(d("10")) {
		t.Errorf("result = %s, want recomputed 10", c.Result())
	}
	if !strings.Contains(buf.String(), "loaded result 20 != computed 10") {
		t.Errorf("expected mismatch warning, got %q", buf.String())
	}
}

func TestFormatResult(t *testing.T) {
	t.Parallel()

	c := mustNew(t, "Division", "5", "6")
	if got := c.FormatResult(2); got != "0.83" {
		t.Errorf("FormatResult(2) = %q, want 0.83", got)
	}
	if got := c.FormatResult(5); got != "0.83333" {
		t.Errorf("FormatResult(5) = %q, want 0.83333", got)
	}

	whole := mustNew(t, "Division", "9", "3")
	if got := whole.FormatResult(10); got != "3" {
		t.Errorf("FormatResult(10) = %q, want 3", got)
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	c1 := mustNew(t, "Multiplication", "3", "4")
	c2 := mustNew(t, "Multiplication", "3", "4")
	c3 := mustNew(t, "Division", "8", "2")

	if !c1.Equal(c2) {
		t.Error("identical calculations should be equal")
	}
	if c1.Equal(c3) {
		t.Error("different calculations should not be equal")
	}
	if c1.Equal(nil) {
		t.Error("calculation should not equal nil")
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	c := mustNew(t, "add", "7", "4")
	if got, want := c.String(), "Addition(7, 4) = 11"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
