// ABOUTME: Calculator configuration layered from defaults, YAML file, env vars and overrides
// ABOUTME: Validate enforces positive limits; values are immutable once loaded

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrConfiguration marks invalid or unparseable configuration values.
var ErrConfiguration = errors.New("invalid configuration")

// ValidationError names the offending setting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrConfiguration }

// Defaults applied before any file or environment layer.
const (
	DefaultMaxHistorySize  = 1000
	DefaultAutoSave        = true
	DefaultPrecision       = 10
	DefaultMaxInputValue   = "1e999"
	DefaultDefaultEncoding = "utf-8"

	// MaxPrecision bounds Precision so it always fits the int32 scale
	// used when formatting results.
	MaxPrecision = 1000
)

// Config holds calculator settings.
type Config struct {
	BaseDir         string
	MaxHistorySize  int
	AutoSave        bool
	Precision       int
	MaxInputValue   decimal.Decimal
	DefaultEncoding string

	// Path overrides; empty means derive from BaseDir.
	logDir      string
	logFile     string
	historyDir  string
	historyFile string
	metricsFile string
}

// Overrides carries explicit values (e.g. CLI flags) that win over every
// other layer. Nil fields are ignored.
type Overrides struct {
	BaseDir     *string
	AutoSave    *bool
	Precision   *int
	HistoryFile *string
	MetricsFile *string
}

// New returns a Config holding the defaults, rooted at baseDir.
func New(baseDir string) *Config {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &Config{
		BaseDir:         baseDir,
		MaxHistorySize:  DefaultMaxHistorySize,
		AutoSave:        DefaultAutoSave,
		Precision:       DefaultPrecision,
		MaxInputValue:   decimal.RequireFromString(DefaultMaxInputValue),
		DefaultEncoding: DefaultDefaultEncoding,
	}
}

// Load builds the configuration. Layers, lowest first: defaults, the YAML
// file in the base directory, CALCULATOR_* environment variables, then ov.
// The result is not validated; call Validate.
func Load(ov Overrides) (*Config, error) {
	baseDir := os.Getenv(EnvBaseDir)
	if ov.BaseDir != nil && *ov.BaseDir != "" {
		baseDir = *ov.BaseDir
	}
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		baseDir = cwd
	}

	cfg := New(baseDir)

	fc, err := loadFile(ConfigFile(cfg.BaseDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := cfg.applyFile(fc); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyOverrides(ov)
	return cfg, nil
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if c.MaxHistorySize <= 0 {
		return &ValidationError{Field: "max_history_size", Reason: "must be positive"}
	}
	if c.Precision <= 0 {
		return &ValidationError{Field: "precision", Reason: "must be positive"}
	}
	if c.Precision > MaxPrecision {
		return &ValidationError{Field: "precision", Reason: fmt.Sprintf("must be at most %d", MaxPrecision)}
	}
	if !c.MaxInputValue.IsPositive() {
		return &ValidationError{Field: "max_input_value", Reason: "must be positive"}
	}
	if _, err := htmlindex.Get(c.DefaultEncoding); err != nil {
		return &ValidationError{Field: "default_encoding", Reason: fmt.Sprintf("unknown encoding %q", c.DefaultEncoding)}
	}
	return nil
}

func (c *Config) applyFile(fc *fileConfig) error {
	if fc == nil {
		return nil
	}
	ResolveEnvVars(fc)

	if fc.MaxHistorySize != nil {
		c.MaxHistorySize = *fc.MaxHistorySize
	}
	if fc.AutoSave != nil {
		c.AutoSave = *fc.AutoSave
	}
	if fc.Precision != nil {
		c.Precision = *fc.Precision
	}
	if fc.MaxInputValue != "" {
		v, err := parseDecimal("max_input_value", fc.MaxInputValue)
		if err != nil {
			return err
		}
		c.MaxInputValue = v
	}
	if fc.DefaultEncoding != "" {
		c.DefaultEncoding = fc.DefaultEncoding
	}

	c.logDir = c.resolve(fc.LogDir)
	c.logFile = c.resolve(fc.LogFile)
	c.historyDir = c.resolve(fc.HistoryDir)
	c.historyFile = c.resolve(fc.HistoryFile)
	c.metricsFile = c.resolve(fc.MetricsFile)
	return nil
}

// applyEnv reads CALCULATOR_* variables through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMaxHistorySize); ok {
		n, err := parseInt(EnvMaxHistorySize, v)
		if err != nil {
			return err
		}
		c.MaxHistorySize = n
	}
	if v, ok := lookup(EnvAutoSave); ok {
		c.AutoSave = parseBool(v)
	}
	if v, ok := lookup(EnvPrecision); ok {
		n, err := parseInt(EnvPrecision, v)
		if err != nil {
			return err
		}
		c.Precision = n
	}
	if v, ok := lookup(EnvMaxInputValue); ok {
		d, err := parseDecimal(EnvMaxInputValue, v)
		if err != nil {
			return err
		}
		c.MaxInputValue = d
	}
	if v, ok := lookup(EnvDefaultEncoding); ok && v != "" {
		c.DefaultEncoding = v
	}

	for env, dst := range map[string]*string{
		EnvLogDir:      &c.logDir,
		EnvLogFile:     &c.logFile,
		EnvHistoryDir:  &c.historyDir,
		EnvHistoryFile: &c.historyFile,
		EnvMetricsFile: &c.metricsFile,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*dst = c.resolve(v)
		}
	}
	return nil
}

func (c *Config) applyOverrides(ov Overrides) {
	if ov.AutoSave != nil {
		c.AutoSave = *ov.AutoSave
	}
	if ov.Precision != nil {
		c.Precision = *ov.Precision
	}
	if ov.HistoryFile != nil && *ov.HistoryFile != "" {
		c.historyFile = c.resolve(*ov.HistoryFile)
	}
	if ov.MetricsFile != nil && *ov.MetricsFile != "" {
		c.metricsFile = c.resolve(*ov.MetricsFile)
	}
}

func parseInt(field, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("invalid integer %q", v)}
	}
	return n, nil
}

func parseDecimal(field, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: fmt.Sprintf("invalid number %q", v)}
	}
	return d, nil
}

// parseBool treats "true" and "1" (any case) as true, everything else as false.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1"
}
