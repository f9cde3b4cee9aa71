// ABOUTME: Wires configuration, logging, storage, calculator and observers for every subcommand
// ABOUTME: close() flushes the metrics textfile and releases the log file

package main

import (
	"fmt"

	"github.com/mauromedda/calc-go/internal/config"
	"github.com/mauromedda/calc-go/internal/history"
	clog "github.com/mauromedda/calc-go/internal/log"
	"github.com/mauromedda/calc-go/internal/metrics"
	"github.com/mauromedda/calc-go/internal/operation"
	"github.com/mauromedda/calc-go/internal/storage"
)

type app struct {
	cfg     *config.Config
	calc    *history.Calculator
	metrics *metrics.Metrics
}

// newApp loads configuration and builds a calculator. persistent controls
// whether the history store and auto-save observer are attached.
func newApp(flags *rootFlags, persistent bool) (*app, error) {
	if flags.verbose {
		clog.SetLevel(clog.LevelDebug)
	} else {
		clog.SetLevel(clog.LevelWarn)
	}

	cfg, err := config.Load(flags.overrides())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := clog.Setup(cfg.LogFile()); err != nil {
		return nil, err
	}
	clog.Debug("config loaded: base_dir=%s history=%s", cfg.BaseDir, cfg.HistoryFile())

	var store *storage.Store
	if persistent {
		store, err = storage.NewStore(cfg.HistoryFile(), cfg.DefaultEncoding)
		if err != nil {
			clog.Close()
			return nil, fmt.Errorf("opening history store: %w", err)
		}
	}

	a := &app{
		cfg:     cfg,
		calc:    history.New(cfg, operation.NewRegistry(), store),
		metrics: metrics.New(),
	}
	observers := []history.Observer{history.NewLoggingObserver(nil)}
	if persistent {
		observers = append(observers, history.NewAutoSaveObserver(a.calc))
	}
	observers = append(observers, a.metrics)
	for _, o := range observers {
		if err := a.calc.AddObserver(o); err != nil {
			clog.Close()
			return nil, err
		}
	}
	return a, nil
}

// loadHistory restores persisted history, starting empty on failure.
func (a *app) loadHistory() {
	if err := a.calc.LoadHistory(); err != nil {
		clog.Warn("could not load history, starting empty: %v", err)
	}
}

func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile()); err != nil {
		clog.Warn("%v", err)
	}
	clog.Close()
}
