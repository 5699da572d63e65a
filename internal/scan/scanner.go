// Package scan finds source files, dispatches them to their providers and
// merges the findings into one ordered result.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/mvp-joe/project-strings/internal/provider"
)

// Policy decides what a failed provider batch does to the scan.
type Policy int

const (
	// FailFast aborts the scan on the first failed batch.
	FailFast Policy = iota
	// BestEffort drops the failed batch's findings and carries on.
	BestEffort
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case BestEffort:
		return "best-effort"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Options tune a Scanner. Zero values are usable.
type Options struct {
	// Workers bounds the number of batches running at once. Values below
	// one mean one.
	Workers  int
	Policy   Policy
	Logger   *slog.Logger
	Progress ProgressReporter
}

// Stats summarizes a scan.
type Stats struct {
	Files    int
	Skipped  int
	Batches  int
	Literals int
	Failed   int
	Duration time.Duration
}

// Result is the merged outcome of a scan.
type Result struct {
	// Literals are ordered by case-insensitive absolute path, then
	// StartIndex.
	Literals []literal.Literal
	// Skipped lists files no provider claims.
	Skipped []string
	// Failures lists the batches dropped under BestEffort.
	Failures []*provider.ProviderError
	Stats    Stats
}

// Scanner dispatches files to providers.
type Scanner struct {
	registry *provider.Registry
	builtIn  provider.Runner
	external provider.Runner
	opts     Options
}

// New creates a scanner. Built-in providers run through builtIn and
// providers with a command through external.
func New(registry *provider.Registry, builtIn, external provider.Runner, opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	return &Scanner{registry: registry, builtIn: builtIn, external: external, opts: opts}
}

type batch struct {
	provider provider.Provider
	files    []string
}

// Run groups files by provider, invokes each provider once and returns the
// merged findings. Under FailFast the first failure cancels the remaining
// batches and is returned as a *provider.ProviderError.
func (s *Scanner) Run(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	batches, skipped := s.group(files)
	s.opts.Progress.OnScanStart(len(files)-len(skipped), len(batches))

	results := make([][]literal.Literal, len(batches))
	var (
		mu       sync.Mutex
		failures []*provider.ProviderError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, b := range batches {
		g.Go(func() error {
			lits, err := s.run(gctx, b)
			s.opts.Progress.OnBatchComplete(b.provider.Name, len(b.files), err)
			if err == nil {
				results[i] = lits
				return nil
			}

			var perr *provider.ProviderError
			if !errors.As(err, &perr) {
				perr = &provider.ProviderError{Provider: b.provider.Name, Files: b.files, Err: err}
			}
			if s.opts.Policy == FailFast || ctx.Err() != nil {
				return perr
			}

			s.opts.Logger.Warn("provider failed, dropping its results",
				"provider", perr.Provider, "files", len(perr.Files), "error", perr.Err)
			mu.Lock()
			failures = append(failures, perr)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []literal.Literal
	for _, lits := range results {
		merged = append(merged, lits...)
	}
	Sort(merged)

	res := &Result{
		Literals: merged,
		Skipped:  skipped,
		Failures: failures,
		Stats: Stats{
			Files:    len(files) - len(skipped),
			Skipped:  len(skipped),
			Batches:  len(batches),
			Literals: len(merged),
			Failed:   len(failures),
			Duration: time.Since(start),
		},
	}
	s.opts.Progress.OnScanComplete(res.Stats)
	return res, nil
}

// group assigns files to providers in registry order.
func (s *Scanner) group(files []string) ([]batch, []string) {
	index := make(map[string]int)
	var (
		batches []batch
		skipped []string
	)
	for _, path := range files {
		p, ok := s.registry.Lookup(path)
		if !ok {
			s.opts.Logger.Debug("no provider for file", "path", path)
			skipped = append(skipped, path)
			continue
		}
		i, ok := index[p.Name]
		if !ok {
			i = len(batches)
			index[p.Name] = i
			batches = append(batches, batch{provider: p})
		}
		batches[i].files = append(batches[i].files, path)
	}
	return batches, skipped
}

func (s *Scanner) run(ctx context.Context, b batch) ([]literal.Literal, error) {
	r := s.external
	if b.provider.BuiltIn() && s.builtIn != nil {
		r = s.builtIn
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no runner for %s", provider.ErrInvalidProvider, b.provider.Name)
	}
	return r.Run(ctx, b.provider, b.files)
}

// Sort orders literals by case-insensitive absolute path, then StartIndex.
// The sort is stable, so literals at the same position keep their order.
func Sort(lits []literal.Literal) {
	keys := make(map[string]string)
	key := func(path string) string {
		k, ok := keys[path]
		if !ok {
			k = path
			if abs, err := filepath.Abs(path); err == nil {
				k = abs
			}
			k = strings.ToLower(k)
			keys[path] = k
		}
		return k
	}

	sort.SliceStable(lits, func(i, j int) bool {
		ki, kj := key(lits[i].Path), key(lits[j].Path)
		if ki != kj {
			return ki < kj
		}
		return lits[i].StartIndex < lits[j].StartIndex
	})
}
