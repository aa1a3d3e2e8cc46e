package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sankz2/pattern-search-tool/internal/logger"
)

// DirName is the per-project configuration directory.
const DirName = ".pattern-search-tool"

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every extract/scan run in the history database
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// DBPath overrides the history database location (default: $PST_HOME/history/runs.db)
	DBPath string `yaml:"db_path" toml:"db_path"`

	// KeepRuns caps the number of stored runs (0 = unlimited)
	KeepRuns int `yaml:"keep_runs" toml:"keep_runs"`
}

// Config represents pattern-search-tool configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written (default: $PST_HOME/logs)
	LogDir string `yaml:"log_dir"`

	// Workers bounds parallel file scanning (0 = number of CPUs)
	Workers int `yaml:"workers"`

	// Encoding is the text encoding of scanned logs
	Encoding string `yaml:"encoding"`

	// Exclude lists doublestar globs skipped while scanning
	Exclude []string `yaml:"exclude"`

	// OutputDirSuffix is appended to the scanned directory to name the output directory
	OutputDirSuffix string `yaml:"output_dir_suffix"`

	// OutputFileSuffix is appended to each log's stem to name its filtered copy
	OutputFileSuffix string `yaml:"output_file_suffix"`

	// MaxDepth limits archive-in-archive nesting (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// Presets adds the preset patterns to every scan
	Presets bool `yaml:"presets"`

	// Timeout bounds a whole command run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// MetricsFile receives Prometheus text-format counters after each run
	MetricsFile string `yaml:"metrics_file"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogDir:           "",
		Workers:          0,
		Encoding:         "utf-8",
		OutputDirSuffix:  "_output",
		OutputFileSuffix: "_output",
		MaxDepth:         32,
		Presets:          false,
		Timeout:          0,
		History: HistoryConfig{
			Enabled:  true,
			KeepRuns: 500,
		},
	}
}

// fileConfig mirrors Config with pointer fields so that keys present in the
// file, even with zero values, can be told apart from absent ones.
type fileConfig struct {
	LogLevel         *string   `yaml:"log_level" toml:"log_level"`
	LogDir           *string   `yaml:"log_dir" toml:"log_dir"`
	Workers          *int      `yaml:"workers" toml:"workers"`
	Encoding         *string   `yaml:"encoding" toml:"encoding"`
	Exclude          *[]string `yaml:"exclude" toml:"exclude"`
	OutputDirSuffix  *string   `yaml:"output_dir_suffix" toml:"output_dir_suffix"`
	OutputFileSuffix *string   `yaml:"output_file_suffix" toml:"output_file_suffix"`
	MaxDepth         *int      `yaml:"max_depth" toml:"max_depth"`
	Presets          *bool     `yaml:"presets" toml:"presets"`
	Timeout          *string   `yaml:"timeout" toml:"timeout"`
	MetricsFile      *string   `yaml:"metrics_file" toml:"metrics_file"`
	History          *struct {
		Enabled  *bool   `yaml:"enabled" toml:"enabled"`
		DBPath   *string `yaml:"db_path" toml:"db_path"`
		KeepRuns *int    `yaml:"keep_runs" toml:"keep_runs"`
	} `yaml:"history" toml:"history"`
}

// LoadConfig loads configuration from the specified file path.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.apply(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply merges the keys present in the file over the defaults.
func (c *Config) apply(fc fileConfig) error {
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.Encoding != nil {
		c.Encoding = *fc.Encoding
	}
	if fc.Exclude != nil {
		c.Exclude = *fc.Exclude
	}
	if fc.OutputDirSuffix != nil {
		c.OutputDirSuffix = *fc.OutputDirSuffix
	}
	if fc.OutputFileSuffix != nil {
		c.OutputFileSuffix = *fc.OutputFileSuffix
	}
	if fc.MaxDepth != nil {
		c.MaxDepth = *fc.MaxDepth
	}
	if fc.Presets != nil {
		c.Presets = *fc.Presets
	}
	if fc.Timeout != nil && *fc.Timeout != "" {
		timeout, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", *fc.Timeout, err)
		}
		c.Timeout = timeout
	}
	if fc.MetricsFile != nil {
		c.MetricsFile = *fc.MetricsFile
	}
	if h := fc.History; h != nil {
		if h.Enabled != nil {
			c.History.Enabled = *h.Enabled
		}
		if h.DBPath != nil {
			c.History.DBPath = *h.DBPath
		}
		if h.KeepRuns != nil {
			c.History.KeepRuns = *h.KeepRuns
		}
	}
	return nil
}

// LoadConfigFromDir loads .pattern-search-tool/config.yaml (or config.toml)
// from the specified directory. If neither exists, returns default
// configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, DirName, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// FlagOverrides carries CLI flag values. Nil fields were not set on the
// command line and leave the configuration untouched.
type FlagOverrides struct {
	LogLevel    *string
	LogDir      *string
	Workers     *int
	Encoding    *string
	Exclude     []string
	MaxDepth    *int
	Presets     *bool
	Timeout     *time.Duration
	MetricsFile *string
	NoHistory   *bool
}

// MergeWithFlags merges CLI flags into the configuration.
// This allows CLI flags to take precedence over config file settings.
// Exclude globs from flags are appended to those from the file.
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.Encoding != nil {
		c.Encoding = *f.Encoding
	}
	if len(f.Exclude) > 0 {
		c.Exclude = append(c.Exclude, f.Exclude...)
	}
	if f.MaxDepth != nil {
		c.MaxDepth = *f.MaxDepth
	}
	if f.Presets != nil {
		c.Presets = *f.Presets
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.MetricsFile != nil {
		c.MetricsFile = *f.MetricsFile
	}
	if f.NoHistory != nil && *f.NoHistory {
		c.History.Enabled = false
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: %s", c.LogLevel, strings.Join(logger.ValidLevels, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.OutputDirSuffix == "" {
		return fmt.Errorf("output_dir_suffix cannot be empty: output would overwrite the scanned directory")
	}
	if strings.ContainsAny(c.OutputDirSuffix, `/\`) || strings.ContainsAny(c.OutputFileSuffix, `/\`) {
		return fmt.Errorf("output suffixes cannot contain path separators")
	}
	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}
	return nil
}
