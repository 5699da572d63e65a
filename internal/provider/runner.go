package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvp-joe/project-strings/internal/cache"
	"github.com/mvp-joe/project-strings/internal/extractors"
	"github.com/mvp-joe/project-strings/internal/literal"
)

// Runner invokes one provider over a batch of files and returns every
// literal found, with Path set to the file it came from.
type Runner interface {
	Run(ctx context.Context, p Provider, files []string) ([]literal.Literal, error)
}

// InProcessRunner runs built-in extractors in the calling process.
type InProcessRunner struct {
	Logger *slog.Logger
	// Cache, when set, skips files unchanged since they were last extracted.
	Cache *cache.Cache
}

// NewInProcessRunner creates an in-process runner. A nil logger uses
// slog.Default().
func NewInProcessRunner(logger *slog.Logger) *InProcessRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessRunner{Logger: logger}
}

// Run extracts each file in turn. Any failure fails the whole batch with a
// *ProviderError.
func (r *InProcessRunner) Run(ctx context.Context, p Provider, files []string) ([]literal.Literal, error) {
	factory, ok := extractors.Lookup(p.Name)
	if !ok || !p.BuiltIn() {
		return nil, &ProviderError{
			Provider: p.Name,
			Files:    files,
			Err:      fmt.Errorf("%w: no built-in extractor named %s", ErrInvalidProvider, p.Name),
		}
	}

	var out []literal.Literal
	for _, path := range files {
		var key string
		if r.Cache != nil {
			// Files that cannot be stat'ed fail in ExtractFile below.
			key, _ = cache.Key(p.Name, path)
		}
		if key != "" {
			if lits, ok := r.Cache.Get(key); ok {
				r.Logger.Debug("cached", "provider", p.Name, "path", path, "literals", len(lits))
				out = append(out, lits...)
				continue
			}
		}
		lits, err := ExtractFile(ctx, factory, path)
		if err != nil {
			return nil, &ProviderError{Provider: p.Name, Files: files, Err: err}
		}
		r.Logger.Debug("extracted", "provider", p.Name, "path", path, "literals", len(lits))
		if key != "" {
			r.Cache.Put(key, lits)
		}
		out = append(out, lits...)
	}
	return out, nil
}

// ExtractFile reads path and runs the extractor the factory builds for it.
func ExtractFile(ctx context.Context, factory extractors.Factory, path string) ([]literal.Literal, error) {
	source, err := literal.ReadSource(path)
	if err != nil {
		return nil, err
	}
	lits, err := factory(path).Search(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return literal.WithPath(lits, path), nil
}
