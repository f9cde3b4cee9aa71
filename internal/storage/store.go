// ABOUTME: CSV persistence for calculation history with configurable file encoding
// ABOUTME: Writes via temp file + rename; a missing file loads as empty history

package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/mauromedda/calc-go/internal/calculation"
)

// ErrPersistence marks any failure to read or write the history file.
var ErrPersistence = errors.New("history persistence failed")

// Columns is the header row of the history file, in order.
var Columns = []string{"operation", "operand1", "operand2", "result", "timestamp"}

// Error wraps a persistence failure with the file path involved.
type Error struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s history %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// Store reads and writes one history file.
type Store struct {
	path string
	enc  encoding.Encoding
}

// NewStore creates a Store for path using the named character encoding
// (e.g. "utf-8", "latin1"). An empty name means UTF-8.
func NewStore(path, encodingName string) (*Store, error) {
	if encodingName == "" {
		encodingName = "utf-8"
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("history encoding %q: %w", encodingName, err)
	}
	return &Store{path: path, enc: enc}, nil
}

// Path returns the history file path.
func (s *Store) Path() string { return s.path }

// Save writes records in order, replacing any existing file. Parent
// directories are created as needed.
func (s *Store) Save(records []calculation.Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return s.fail("save", fmt.Errorf("creating history dir: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.csv")
	if err != nil {
		return s.fail("save", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := s.write(tmp, records); err != nil {
		tmp.Close()
		return s.fail("save", err)
	}
	if err := tmp.Close(); err != nil {
		return s.fail("save", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return s.fail("save", err)
	}
	return nil
}

func (s *Store) write(w io.Writer, records []calculation.Record) error {
	ew := s.enc.NewEncoder().Writer(w)
	cw := csv.NewWriter(ew)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Operation, r.Operand1, r.Operand2, r.Result, r.Timestamp}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads all records. A missing or zero-length file yields an empty
// slice and no error.
func (s *Store) Load() ([]calculation.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []calculation.Record{}, nil
		}
		return nil, s.fail("load", err)
	}
	defer f.Close()

	cr := csv.NewReader(s.enc.NewDecoder().Reader(f))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []calculation.Record{}, nil
	}
	if err != nil {
		return nil, s.fail("load", fmt.Errorf("reading header: %w", err))
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, s.fail("load", err)
	}

	records := []calculation.Record{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.fail("load", err)
		}
		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, s.fail("load", fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(row)))
		}
		records = append(records, calculation.Record{
			Operation: row[idx["operation"]],
			Operand1:  row[idx["operand1"]],
			Operand2:  row[idx["operand2"]],
			Result:    row[idx["result"]],
			Timestamp: row[idx["timestamp"]],
		})
	}
	return records, nil
}

// columnIndex maps each required column to its position in header.
// Extra columns (e.g. a leading index column) are ignored.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[name] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (s *Store) fail(op string, err error) error {
	return &Error{Op: op, Path: s.path, Err: err}
}
