// Package config loads the scan configuration.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (STRINGS_*)
//  2. Project config (.strings/config.yml)
//  3. Built-in defaults
//
// Nested fields map to environment variables with underscores,
// e.g. STRINGS_SCAN_WORKERS or STRINGS_OUTPUT_FORMAT.
package config

import (
	"runtime"
	"time"

	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/report"
	"github.com/mvp-joe/project-strings/internal/scan"
)

// Dir is the project directory holding config.yml.
const Dir = ".strings"

// Config represents the complete strings configuration.
// It can be loaded from .strings/config.yml with environment variable overrides.
type Config struct {
	Paths     PathsConfig         `yaml:"paths" mapstructure:"paths"`
	Scan      ScanConfig          `yaml:"scan" mapstructure:"scan"`
	Output    OutputConfig        `yaml:"output" mapstructure:"output"`
	Providers []provider.Provider `yaml:"providers" mapstructure:"providers"`
}

// PathsConfig defines which files to scan and which to ignore.
type PathsConfig struct {
	Input    []string `yaml:"input" mapstructure:"input"`       // directories or files to scan
	Patterns []string `yaml:"patterns" mapstructure:"patterns"` // glob patterns of files to scan
	Ignore   []string `yaml:"ignore" mapstructure:"ignore"`     // glob patterns to ignore
}

// ScanConfig controls how providers are invoked.
type ScanConfig struct {
	Workers    int           `yaml:"workers" mapstructure:"workers"`         // provider batches run at once
	BestEffort bool          `yaml:"best_effort" mapstructure:"best_effort"` // drop failed providers instead of aborting
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`         // whole scan, zero means none
	InProcess  bool          `yaml:"in_process" mapstructure:"in_process"`   // run built-in extractors without workers
}

// OutputConfig defines where and how findings are written.
type OutputConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	Format        string `yaml:"format" mapstructure:"format"` // csv, jsonl or sqlite
	SeparatorLine bool   `yaml:"separator_line" mapstructure:"separator_line"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Input: []string{"."},
			Patterns: []string{
				"**/*.cs",
				"**/*.cshtml",
				"**/*.razor",
				"**/*.ts",
				"**/*.tsx",
				"**/*.sql",
				"**/*.csql",
			},
			Ignore: []string{
				"**/bin/**",
				"**/obj/**",
				"**/node_modules/**",
				".git/**",
				".vs/**",
				"dist/**",
				"packages/**",
				"**/wwwroot/lib/**",
			},
		},
		Scan: ScanConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Path:          "result.csv",
			Format:        report.FormatCSV,
			SeparatorLine: true,
		},
	}
}

// Registry returns the configured providers, or the built-in ones when
// none are configured.
func (c *Config) Registry() (*provider.Registry, error) {
	if len(c.Providers) == 0 {
		return provider.DefaultRegistry(), nil
	}
	return provider.NewRegistry(c.Providers)
}

// ScanOptions converts the scan section to scanner options. Logger and
// progress reporting are left to the caller.
func (c *Config) ScanOptions() scan.Options {
	policy := scan.FailFast
	if c.Scan.BestEffort {
		policy = scan.BestEffort
	}
	return scan.Options{
		Workers: c.Scan.Workers,
		Policy:  policy,
	}
}

// Discovery builds the file discovery for the paths section.
func (c *Config) Discovery() (*scan.FileDiscovery, error) {
	return scan.NewFileDiscovery(c.Paths.Patterns, c.Paths.Ignore)
}
