// ABOUTME: History snapshots backing undo/redo, with easyjson (de)serialization
// ABOUTME: Snapshots share immutable calculations and copy only the slice

package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/calc-go/internal/calculation"
	"github.com/mauromedda/calc-go/internal/operation"
)

// Memento is a copy of the history taken at one point in time.
type Memento struct {
	History   []*calculation.Calculation
	Timestamp time.Time
}

func newMemento(history []*calculation.Calculation) *Memento {
	return &Memento{History: slices.Clone(history), Timestamp: time.Now()}
}

// MarshalJSON encodes the memento as {"history":[records...],"timestamp":"..."}.
func (m *Memento) MarshalJSON() ([]byte, error) {
	return easyjson.Marshal(m.snapshot())
}

// DecodeMemento parses JSON produced by MarshalJSON, rebuilding each
// calculation through reg.
func DecodeMemento(reg *operation.Registry, data []byte) (*Memento, error) {
	var s snapshot
	if err := easyjson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot timestamp: %w", err)
	}

	m := &Memento{History: make([]*calculation.Calculation, 0, len(s.History)), Timestamp: ts}
	for i, rec := range s.History {
		c, err := calculation.FromRecord(reg, rec)
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot entry %d: %w", i, err)
		}
		m.History = append(m.History, c)
	}
	return m, nil
}

func (m *Memento) snapshot() *snapshot {
	s := &snapshot{
		History:   make([]calculation.Record, len(m.History)),
		Timestamp: m.Timestamp.Format(time.RFC3339Nano),
	}
	for i, c := range m.History {
		s.History[i] = c.Record()
	}
	return s
}

// snapshot is the wire form of a Memento.
type snapshot struct {
	History   []calculation.Record `json:"history"`
	Timestamp string               `json:"timestamp"`
}

func (s *snapshot) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"history":`)
	if s.History == nil {
		w.RawString("[]")
	} else {
		w.RawByte('[')
		for i, r := range s.History {
			if i > 0 {
				w.RawByte(',')
			}
			writeRecord(w, r)
		}
		w.RawByte(']')
	}
	w.RawString(`,"timestamp":`)
	w.String(s.Timestamp)
	w.RawByte('}')
}

func (s *snapshot) UnmarshalEasyJSON(l *jlexer.Lexer) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "history":
			if l.IsNull() {
				l.Skip()
				s.History = nil
				break
			}
			l.Delim('[')
			s.History = []calculation.Record{}
			for !l.IsDelim(']') {
				s.History = append(s.History, readRecord(l))
				l.WantComma()
			}
			l.Delim(']')
		case "timestamp":
			s.Timestamp = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}

func writeRecord(w *jwriter.Writer, r calculation.Record) {
	w.RawString(`{"operation":`)
	w.String(r.Operation)
	w.RawString(`,"operand1":`)
	w.String(r.Operand1)
	w.RawString(`,"operand2":`)
	w.String(r.Operand2)
	w.RawString(`,"result":`)
	w.String(r.Result)
	w.RawString(`,"timestamp":`)
	w.String(r.Timestamp)
	w.RawByte('}')
}

func readRecord(l *jlexer.Lexer) calculation.Record {
	var r calculation.Record
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "operation":
			r.Operation = l.String()
		case "operand1":
			r.Operand1 = l.String()
		case "operand2":
			r.Operand2 = l.String()
		case "result":
			r.Result = l.String()
		case "timestamp":
			r.Timestamp = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
	return r
}
