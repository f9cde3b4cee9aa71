// ABOUTME: Prometheus counters for calculations, failures and undo/redo usage
// ABOUTME: Uses a private registry and writes textfile-collector output on demand

// Package metrics counts calculator activity with Prometheus counters.
//
// Metrics live in a private registry, so several instances can coexist (one
// per test). Nothing is served over HTTP; WriteTextfile dumps the registry in
// the node_exporter textfile format.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mauromedda/calc-go/internal/calculation"
	"github.com/mauromedda/calc-go/internal/history"
	"github.com/mauromedda/calc-go/internal/operation"
	"github.com/mauromedda/calc-go/internal/validator"
)

const namespace = "calculator"

// Failure reasons used as the "reason" label of failures_total.
const (
	ReasonDivisionByZero   = "division_by_zero"
	ReasonNegativeExponent = "negative_exponent"
	ReasonUndefinedPower   = "undefined_power"
	ReasonPowerOverflow    = "power_overflow"
	ReasonZeroRoot         = "zero_root"
	ReasonComplexResult    = "complex_result"
	ReasonInvalidRoot      = "invalid_root"
	ReasonInvalidNumber    = "invalid_number"
	ReasonValueTooLarge    = "value_too_large"
	ReasonTooManyDecimals  = "too_many_decimals"
	ReasonNoOperation      = "no_operation"
	ReasonUnknownOperation = "unknown_operation"
	ReasonOther            = "other"
)

var reasons = []struct {
	err    error
	reason string
}{
	{operation.ErrDivisionByZero, ReasonDivisionByZero},
	{operation.ErrNegativeExponent, ReasonNegativeExponent},
	{operation.ErrUndefinedPower, ReasonUndefinedPower},
	{operation.ErrPowerOverflow, ReasonPowerOverflow},
	{operation.ErrZeroRoot, ReasonZeroRoot},
	{operation.ErrComplexResult, ReasonComplexResult},
	{operation.ErrInvalidRoot, ReasonInvalidRoot},
	{operation.ErrUnknownOperation, ReasonUnknownOperation},
	{validator.ErrInvalidNumberFormat, ReasonInvalidNumber},
	{validator.ErrValueTooLarge, ReasonValueTooLarge},
	{validator.ErrTooManyDecimals, ReasonTooManyDecimals},
	{history.ErrNoOperationSet, ReasonNoOperation},
}

// Reason classifies err into a failures_total label value.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonOther
}

// Metrics holds the calculator counters. It implements history.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// CalculationsTotal counts successful calculations.
	// Labels: operation (Addition, Division, ...)
	CalculationsTotal *prometheus.CounterVec

	// FailuresTotal counts rejected calculations.
	// Labels: reason (see Reason)
	FailuresTotal *prometheus.CounterVec

	UndoTotal prometheus.Counter
	RedoTotal prometheus.Counter
}

// New creates the counters and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CalculationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Total number of successful calculations by operation",
			},
			[]string{"operation"},
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Total number of failed calculations by reason",
			},
			[]string{"reason"},
		),
		UndoTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Total number of successful undo steps",
		}),
		RedoTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redo_total",
			Help:      "Total number of successful redo steps",
		}),
	}
	m.registry.MustRegister(m.CalculationsTotal, m.FailuresTotal, m.UndoTotal, m.RedoTotal)
	return m
}

// Registry exposes the private registry, e.g. for testutil.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Update counts c under its operation name.
func (m *Metrics) Update(c *calculation.Calculation) error {
	if c == nil {
		return errors.New("calculation cannot be nil")
	}
	m.CalculationsTotal.WithLabelValues(c.Operation()).Inc()
	return nil
}

// RecordFailure counts err under its reason. A nil err is ignored.
func (m *Metrics) RecordFailure(err error) {
	if err == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(Reason(err)).Inc()
}

func (m *Metrics) RecordUndo() { m.UndoTotal.Inc() }

func (m *Metrics) RecordRedo() { m.RedoTotal.Inc() }

// WriteTextfile atomically writes all metrics to path, creating parent
// directories. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

var _ history.Observer = (*Metrics)(nil)
