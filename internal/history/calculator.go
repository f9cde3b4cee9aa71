// ABOUTME: Calculator history engine with snapshot-based undo/redo and observers
// ABOUTME: Mutations are serialized by one mutex; observers run after it is released

package history

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mauromedda/calc-go/internal/calculation"
	"github.com/mauromedda/calc-go/internal/config"
	"github.com/mauromedda/calc-go/internal/eventbus"
	clog "github.com/mauromedda/calc-go/internal/log"
	"github.com/mauromedda/calc-go/internal/operation"
	"github.com/mauromedda/calc-go/internal/storage"
	"github.com/mauromedda/calc-go/internal/validator"
)

var (
	// ErrNoOperationSet is returned by PerformOperation before SetOperation.
	ErrNoOperationSet = errors.New("no operation set")
	// ErrObserverNotComparable is returned by AddObserver for observers whose
	// dynamic type cannot be compared with ==.
	ErrObserverNotComparable = errors.New("observer type is not comparable")
)

// Observer is notified after each successful calculation.
// Implementations must be comparable (typically pointer types); AddObserver
// rejects the rest.
type Observer interface {
	Update(c *calculation.Calculation) error
}

// Calculator owns the calculation history and its undo/redo stacks.
type Calculator struct {
	mu        sync.Mutex
	cfg       *config.Config
	registry  *operation.Registry
	store     *storage.Store
	op        operation.Operation
	history   []*calculation.Calculation
	undoStack []*Memento
	redoStack []*Memento

	obsMu     sync.Mutex
	bus       *eventbus.Bus[*calculation.Calculation]
	observers []observerEntry
}

type observerEntry struct {
	observer    Observer
	unsubscribe func()
}

// New creates a Calculator. store may be nil, in which case SaveHistory and
// LoadHistory fail with storage.ErrPersistence.
func New(cfg *config.Config, reg *operation.Registry, store *storage.Store) *Calculator {
	return &Calculator{
		cfg:      cfg,
		registry: reg,
		store:    store,
		bus:      eventbus.New[*calculation.Calculation](),
	}
}

// Config returns the configuration the calculator was built with.
func (c *Calculator) Config() *config.Config { return c.cfg }

// Registry returns the operation registry.
func (c *Calculator) Registry() *operation.Registry { return c.registry }

// SetOperation selects the operation used by PerformOperation.
func (c *Calculator) SetOperation(op operation.Operation) {
	c.mu.Lock()
	c.op = op
	c.mu.Unlock()
}

// Operation returns the selected operation, or nil.
func (c *Calculator) Operation() operation.Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.op
}

// PerformOperation validates a and b, applies the selected operation and
// appends the calculation to history. On any error the state is unchanged.
func (c *Calculator) PerformOperation(a, b any) (decimal.Decimal, error) {
	c.mu.Lock()
	calc, err := c.performLocked(a, b)
	c.mu.Unlock()
	if err != nil {
		return decimal.Zero, err
	}

	c.notify(calc)
	return calc.Result(), nil
}

func (c *Calculator) performLocked(a, b any) (*calculation.Calculation, error) {
	if c.op == nil {
		return nil, ErrNoOperationSet
	}

	x, err := validator.Number(a, c.cfg.MaxInputValue)
	if err != nil {
		return nil, err
	}
	y, err := validator.Number(b, c.cfg.MaxInputValue)
	if err != nil {
		return nil, err
	}

	calc, err := calculation.Compute(c.op, x, y)
	if err != nil {
		return nil, err
	}

	c.undoStack = append(c.undoStack, newMemento(c.history))
	c.history = append(slices.Clip(c.history), calc)
	c.redoStack = nil
	return calc, nil
}

// Undo restores the history captured before the last change.
// It returns false when there is nothing to undo.
func (c *Calculator) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.undoStack) == 0 {
		return false
	}
	m := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]
	c.redoStack = append(c.redoStack, newMemento(c.history))
	c.history = slices.Clone(m.History)
	return true
}

// Redo reapplies the last undone change.
// It returns false when there is nothing to redo.
func (c *Calculator) Redo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.redoStack) == 0 {
		return false
	}
	m := c.redoStack[len(c.redoStack)-1]
	c.redoStack = c.redoStack[:len(c.redoStack)-1]
	c.undoStack = append(c.undoStack, newMemento(c.history))
	c.history = slices.Clone(m.History)
	return true
}

// Clear empties the history and both stacks. Clear cannot be undone.
func (c *Calculator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = nil
	c.undoStack = nil
	c.redoStack = nil
}

// History returns a copy of the history in chronological order.
func (c *Calculator) History() []*calculation.Calculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// ShowHistory renders one "Operation(a, b) = result" line per calculation.
func (c *Calculator) ShowHistory() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]string, len(c.history))
	for i, calc := range c.history {
		lines[i] = calc.String()
	}
	return lines
}

// UndoDepth returns the number of available undo steps.
func (c *Calculator) UndoDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undoStack)
}

// RedoDepth returns the number of available redo steps.
func (c *Calculator) RedoDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redoStack)
}

// Snapshot captures the current history as a Memento without touching the
// undo/redo stacks.
func (c *Calculator) Snapshot() *Memento {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newMemento(c.history)
}

// TrimHistory drops the oldest calculations so that at most max remain and
// returns how many were dropped. Undo snapshots are left as they are.
func (c *Calculator) TrimHistory(max int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	excess := len(c.history) - max
	if max <= 0 || excess <= 0 {
		return 0
	}
	c.history = slices.Clone(c.history[excess:])
	return excess
}

// SaveHistory writes the current history to the store.
func (c *Calculator) SaveHistory() error {
	if c.store == nil {
		return fmt.Errorf("save history: %w", storage.ErrPersistence)
	}

	c.mu.Lock()
	records := make([]calculation.Record, len(c.history))
	for i, calc := range c.history {
		records[i] = calc.Record()
	}
	c.mu.Unlock()

	if err := c.store.Save(records); err != nil {
		return err
	}
	clog.Info("History saved successfully to %s", c.store.Path())
	return nil
}

// LoadHistory replaces the history with the store's contents and clears both
// stacks. On failure the in-memory state is left untouched.
func (c *Calculator) LoadHistory() error {
	if c.store == nil {
		return fmt.Errorf("load history: %w", storage.ErrPersistence)
	}

	records, err := c.store.Load()
	if err != nil {
		return err
	}

	loaded := make([]*calculation.Calculation, 0, len(records))
	for i, rec := range records {
		calc, err := calculation.FromRecord(c.registry, rec)
		if err != nil {
			return &storage.Error{Op: "load", Path: c.store.Path(), Err: fmt.Errorf("row %d: %w", i+1, err)}
		}
		loaded = append(loaded, calc)
	}

	c.mu.Lock()
	c.history = loaded
	c.undoStack = nil
	c.redoStack = nil
	c.mu.Unlock()

	if len(loaded) == 0 {
		clog.Info("No history file found or empty history, starting with empty history")
	} else {
		clog.Info("Loaded %d calculations from history", len(loaded))
	}
	return nil
}

// AddObserver registers o. Adding the same observer twice has no effect.
func (c *Calculator) AddObserver(o Observer) error {
	if !isComparable(o) {
		return fmt.Errorf("%w: %T", ErrObserverNotComparable, o)
	}

	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	for _, e := range c.observers {
		if e.observer == o {
			return nil
		}
	}
	unsub := c.bus.Subscribe(o.Update)
	c.observers = append(c.observers, observerEntry{observer: o, unsubscribe: unsub})
	clog.Info("Added observer: %T", o)
	return nil
}

// RemoveObserver unregisters o. Removing an unknown observer has no effect.
func (c *Calculator) RemoveObserver(o Observer) {
	if !isComparable(o) {
		return
	}
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	for i, e := range c.observers {
		if e.observer == o {
			e.unsubscribe()
			c.observers = slices.Delete(c.observers, i, i+1)
			clog.Info("Removed observer: %T", o)
			return
		}
	}
}

// Observers returns the registered observers in registration order.
func (c *Calculator) Observers() []Observer {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	out := make([]Observer, len(c.observers))
	for i, e := range c.observers {
		out[i] = e.observer
	}
	return out
}

func isComparable(o Observer) bool {
	return o != nil && reflect.ValueOf(o).Comparable()
}

// notify delivers calc to every observer. Failures are logged, not returned.
func (c *Calculator) notify(calc *calculation.Calculation) {
	for _, err := range c.bus.Publish(calc) {
		clog.Warn("observer failed for %s: %v", calc, err)
	}
}
