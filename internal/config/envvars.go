// ABOUTME: CALCULATOR_* environment variable names and ${VAR} expansion
// ABOUTME: Expansion applies to path fields read from the YAML config file

package config

import (
	"os"
	"regexp"
)

// Environment variables read by Load.
const (
	EnvBaseDir         = "CALCULATOR_BASE_DIR"
	EnvMaxHistorySize  = "CALCULATOR_MAX_HISTORY_SIZE"
	EnvAutoSave        = "CALCULATOR_AUTO_SAVE"
	EnvPrecision       = "CALCULATOR_PRECISION"
	EnvMaxInputValue   = "CALCULATOR_MAX_INPUT_VALUE"
	EnvDefaultEncoding = "CALCULATOR_DEFAULT_ENCODING"
	EnvLogDir          = "CALCULATOR_LOG_DIR"
	EnvLogFile         = "CALCULATOR_LOG_FILE"
	EnvHistoryDir      = "CALCULATOR_HISTORY_DIR"
	EnvHistoryFile     = "CALCULATOR_HISTORY_FILE"
	EnvMetricsFile     = "CALCULATOR_METRICS_FILE"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in the path fields of fc.
func ResolveEnvVars(fc *fileConfig) {
	fc.LogDir = expandEnv(fc.LogDir)
	fc.LogFile = expandEnv(fc.LogFile)
	fc.HistoryDir = expandEnv(fc.HistoryDir)
	fc.HistoryFile = expandEnv(fc.HistoryFile)
	fc.MetricsFile = expandEnv(fc.MetricsFile)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
