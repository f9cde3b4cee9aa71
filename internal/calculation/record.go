// ABOUTME: Serialized form of a Calculation with exact decimal strings
// ABOUTME: FromRecord recomputes the result and warns when the stored value disagrees

package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	clog "github.com/mauromedda/calc-go/internal/log"
	"github.com/mauromedda/calc-go/internal/operation"
)

// Record is the flat, string-valued form of a Calculation used by
// persistence and snapshot export.
type Record struct {
	Operation string `json:"operation"`
	Operand1  string `json:"operand1"`
	Operand2  string `json:"operand2"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// timestampLayouts are accepted when reading records. The first one is
// used for writing.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Record returns the serialized form of c.
func (c *Calculation) Record() Record {
	return Record{
		Operation: c.operation,
		Operand1:  c.operand1.String(),
		Operand2:  c.operand2.String(),
		Result:    c.result.String(),
		Timestamp: c.timestamp.Format(timestampLayouts[0]),
	}
}

// FromRecord rebuilds a Calculation from rec, recomputing the result through
// reg. A stored result that differs from the recomputed one is logged and
// replaced.
func FromRecord(reg *operation.Registry, rec Record) (*Calculation, error) {
	a, err := decimal.NewFromString(rec.Operand1)
	if err != nil {
		return nil, fmt.Errorf("%w: operand1 %q", ErrCorruptRecord, rec.Operand1)
	}
	b, err := decimal.NewFromString(rec.Operand2)
	if err != nil {
		return nil, fmt.Errorf("%w: operand2 %q", ErrCorruptRecord, rec.Operand2)
	}
	stored, err := decimal.NewFromString(rec.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: result %q", ErrCorruptRecord, rec.Result)
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q", ErrCorruptRecord, rec.Timestamp)
	}

	calc, err := New(reg, rec.Operation, a, b)
	if err != nil {
		return nil, err
	}
	if !calc.result.Equal(stored) {
		clog.Warn("loaded result %s != computed %s", stored, calc.result)
	}
	calc.timestamp = ts
	return calc, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
