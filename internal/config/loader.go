package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (STRINGS_*)
// 2. Config file (.strings/config.yml or .strings/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, Dir))

	// Replace . with _ in env var names (e.g., STRINGS_SCAN_WORKERS)
	v.SetEnvPrefix("STRINGS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"paths.input",
		"paths.patterns",
		"paths.ignore",
		"scan.workers",
		"scan.best_effort",
		"scan.timeout",
		"scan.in_process",
		"output.path",
		"output.format",
		"output.separator_line",
	} {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.input", defaults.Paths.Input)
	v.SetDefault("paths.patterns", defaults.Paths.Patterns)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.best_effort", defaults.Scan.BestEffort)
	v.SetDefault("scan.timeout", defaults.Scan.Timeout)
	v.SetDefault("scan.in_process", defaults.Scan.InProcess)

	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.separator_line", defaults.Output.SeparatorLine)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
