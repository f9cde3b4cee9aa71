// ABOUTME: Filesystem paths for calculator logs, history and metrics
// ABOUTME: Derived from the base directory unless overridden by file, env or flags

package config

import (
	"os"
	"path/filepath"
)

const (
	configFileName  = "calculator.yaml"
	logDirName      = "logs"
	logFileName     = "calculator.log"
	historyDirName  = "history"
	historyFileName = "calculator_history.csv"
)

// ConfigFile returns the path of the optional YAML config file in baseDir.
func ConfigFile(baseDir string) string {
	return filepath.Join(baseDir, configFileName)
}

// LogDir returns the directory holding log files.
func (c *Config) LogDir() string {
	if c.logDir != "" {
		return c.logDir
	}
	return filepath.Join(c.BaseDir, logDirName)
}

// LogFile returns the log file path.
func (c *Config) LogFile() string {
	if c.logFile != "" {
		return c.logFile
	}
	return filepath.Join(c.LogDir(), logFileName)
}

// HistoryDir returns the directory holding the history file.
func (c *Config) HistoryDir() string {
	if c.historyDir != "" {
		return c.historyDir
	}
	return filepath.Join(c.BaseDir, historyDirName)
}

// HistoryFile returns the CSV history file path.
func (c *Config) HistoryFile() string {
	if c.historyFile != "" {
		return c.historyFile
	}
	return filepath.Join(c.HistoryDir(), historyFileName)
}

// MetricsFile returns the metrics textfile path, or "" when metrics export
// is disabled.
func (c *Config) MetricsFile() string {
	return c.metricsFile
}

// SetHistoryFile points history persistence at path (relative paths are
// resolved against BaseDir).
func (c *Config) SetHistoryFile(path string) {
	c.historyFile = c.resolve(path)
}

// resolve makes p absolute relative to BaseDir. Empty stays empty.
func (c *Config) resolve(p string) string {
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.BaseDir, p)
	}
	return filepath.Clean(p)
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
