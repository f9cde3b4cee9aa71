// ABOUTME: Optional calculator.yaml config file decoded with yaml.v3
// ABOUTME: Pointer fields distinguish "unset" from zero values

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors calculator.yaml.
type fileConfig struct {
	MaxHistorySize  *int   `yaml:"max_history_size"`
	AutoSave        *bool  `yaml:"auto_save"`
	Precision       *int   `yaml:"precision"`
	MaxInputValue   string `yaml:"max_input_value"`
	DefaultEncoding string `yaml:"default_encoding"`
	LogDir          string `yaml:"log_dir"`
	LogFile         string `yaml:"log_file"`
	HistoryDir      string `yaml:"history_dir"`
	HistoryFile     string `yaml:"history_file"`
	MetricsFile     string `yaml:"metrics_file"`
}

// loadFile reads a fileConfig from path. The returned error satisfies
// os.IsNotExist when the file is absent.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fc, nil
}
