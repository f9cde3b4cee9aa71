// ABOUTME: Built-in calculation observers: structured logging and auto-save
// ABOUTME: Both are pointer types so the calculator can deduplicate them

package history

import (
	"errors"
	"log/slog"

	"github.com/mauromedda/calc-go/internal/calculation"
	clog "github.com/mauromedda/calc-go/internal/log"
)

var errNilCalculation = errors.New("calculation cannot be nil")

// LoggingObserver writes one structured log entry per calculation.
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver logs to logger, or to the package logger when nil.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) Update(c *calculation.Calculation) error {
	if c == nil {
		return errNilCalculation
	}
	logger := o.logger
	if logger == nil {
		logger = clog.Logger()
	}
	logger.Info("Calculation performed",
		"operation", c.Operation(),
		"operand1", c.Operand1().String(),
		"operand2", c.Operand2().String(),
		"result", c.Result().String(),
	)
	return nil
}

// AutoSaveObserver persists the full history after each calculation when
// the calculator's configuration enables auto-save.
type AutoSaveObserver struct {
	calc *Calculator
}

// NewAutoSaveObserver creates an observer saving calc's history.
func NewAutoSaveObserver(calc *Calculator) *AutoSaveObserver {
	return &AutoSaveObserver{calc: calc}
}

func (o *AutoSaveObserver) Update(c *calculation.Calculation) error {
	if c == nil {
		return errNilCalculation
	}
	if !o.calc.Config().AutoSave {
		return nil
	}
	if err := o.calc.SaveHistory(); err != nil {
		return err
	}
	clog.Info("History auto-saved")
	return nil
}
