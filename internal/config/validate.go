package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/project-strings/internal/report"
)

var (
	// ErrEmptyInput indicates that there is nothing to scan
	ErrEmptyInput = errors.New("empty input paths")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidTimeout indicates a negative scan timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrEmptyOutput indicates a missing output path
	ErrEmptyOutput = errors.New("empty output path")

	// ErrInvalidProviders indicates an unusable provider list
	ErrInvalidProviders = errors.New("invalid providers")
)

// Validate checks that the configuration is valid and complete. Every
// problem found is reported.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validatePaths(&cfg.Paths)...)
	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validateOutput(&cfg.Output)...)

	if len(cfg.Providers) > 0 {
		if _, err := cfg.Registry(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidProviders, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func validatePaths(cfg *PathsConfig) []error {
	var errs []error

	if len(cfg.Input) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one input path required", ErrEmptyInput))
	}

	for _, pattern := range append(slices.Clone(cfg.Patterns), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
			continue
		}
		if err := checkBrackets(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return errs
}

// checkBrackets rejects unclosed '{' and '[' groups, which glob compiles as
// patterns that never match.
func checkBrackets(pattern string) error {
	braces, inClass := 0, false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			braces++
		case c == '}':
			if braces == 0 {
				return fmt.Errorf("unexpected '}' at %d", i)
			}
			braces--
		}
	}
	switch {
	case inClass:
		return errors.New("unclosed '['")
	case braces > 0:
		return errors.New("unclosed '{'")
	}
	return nil
}

func validateScan(cfg *ScanConfig) []error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout cannot be negative, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []error {
	var errs []error

	if !slices.Contains(report.Formats(), cfg.Format) {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'",
			ErrInvalidFormat, strings.Join(report.Formats(), ", "), cfg.Format))
	}

	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: output path is required", ErrEmptyOutput))
	}

	return errs
}
