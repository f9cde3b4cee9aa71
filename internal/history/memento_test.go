// ABOUTME: Tests for memento snapshots and their JSON form
// ABOUTME: Verifies slice isolation and decode of marshalled snapshots

package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mauromedda/calc-go/internal/calculation"
	"github.com/mauromedda/calc-go/internal/operation"
)

func mustCalc(t *testing.T, reg *operation.Registry, name string, a, b int64) *calculation.Calculation {
	t.Helper()
	c, err := calculation.New(reg, name, decimal.NewFromInt(a), decimal.NewFromInt(b))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestMemento_IsolatedFromSource(t *testing.T) {
	t.Parallel()

	reg := operation.NewRegistry()
	history := []*calculation.Calculation{mustCalc(t, reg, "add", 1, 2)}
	m := newMemento(history)

	history[0] = mustCalc(t, reg, "multiply", 3, 3)
	if m.History[0].Operation() != "Addition" {
		t.Error("memento should not see writes to the source slice")
	}
}

func TestMemento_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	reg := operation.NewRegistry()
	m := newMemento([]*calculation.Calculation{
		mustCalc(t, reg, "add", 7, 4),
		mustCalc(t, reg, "divide", 1, 3),
	})

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"history":[{"operation":"Addition","operand1":"7","operand2":"4","result":"11",`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	got, err := DecodeMemento(reg, data)
	if err != nil {
		t.Fatalf("DecodeMemento: %v", err)
	}
	if !got.Timestamp.Equal(m.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, m.Timestamp)
	}
	if !sameHistory(got.History, m.History) {
		t.Errorf("History mismatch after round trip")
	}
}

func TestMemento_EmptyHistoryJSON(t *testing.T) {
	t.Parallel()

	m := &Memento{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"history":[],"timestamp":"2025-01-01T00:00:00Z"}`
	if string(data) != want {
		t.Errorf("MarshalJSON() = %s, want %s", data, want)
	}

	got, err := DecodeMemento(operation.NewRegistry(), data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.History) != 0 {
		t.Errorf("History = %v, want empty", got.History)
	}
}

func TestDecodeMemento_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not json":      `{"history":`,
		"bad timestamp": `{"history":[],"timestamp":"yesterday"}`,
		"bad entry":     `{"history":[{"operation":"Addition","operand1":"x","operand2":"1","result":"1","timestamp":"2025-01-01T00:00:00Z"}],"timestamp":"2025-01-01T00:00:00Z"}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeMemento(operation.NewRegistry(), []byte(input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
