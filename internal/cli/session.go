package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mvp-joe/project-strings/internal/cache"
	"github.com/mvp-joe/project-strings/internal/config"
	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/report"
	"github.com/mvp-joe/project-strings/internal/scan"
	"github.com/mvp-joe/project-strings/internal/watcher"
)

// sessionOptions carry the collaborators of a scan session.
type sessionOptions struct {
	Logger   *slog.Logger
	Progress scan.ProgressReporter
	Stdout   io.Writer
	Watch    bool
}

// root is a resolved input path.
type root struct {
	path  string
	isDir bool
}

// scanSession runs scans for one configuration, once or on every change.
type scanSession struct {
	cfg       *config.Config
	roots     []root
	discovery *scan.FileDiscovery
	scanner   *scan.Scanner
	cache     *cache.Cache
	logger    *slog.Logger
	stdout    io.Writer
}

// newScanSession resolves cfg's relative paths against rootDir and wires the
// runners. Built-in providers run in process when configured to, with a
// result cache in watch mode.
func newScanSession(cfg *config.Config, rootDir string, opts sessionOptions) (*scanSession, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	s := &scanSession{cfg: cfg, logger: opts.Logger, stdout: opts.Stdout}

	for _, in := range cfg.Paths.Input {
		path := resolvePath(rootDir, in)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", in, err)
		}
		s.roots = append(s.roots, root{path: path, isDir: info.IsDir()})
	}
	if cfg.Output.Path != "-" {
		cfg.Output.Path = resolvePath(rootDir, cfg.Output.Path)
	}

	discovery, err := cfg.Discovery()
	if err != nil {
		return nil, err
	}
	s.discovery = discovery

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	external, err := provider.NewWorkerRunner(opts.Logger)
	if err != nil {
		return nil, err
	}

	var builtIn provider.Runner
	if cfg.Scan.InProcess {
		runner := provider.NewInProcessRunner(opts.Logger)
		if opts.Watch {
			if s.cache, err = cache.New(0); err != nil {
				return nil, err
			}
			runner.Cache = s.cache
		}
		builtIn = runner
	}

	scanOpts := cfg.ScanOptions()
	scanOpts.Logger = opts.Logger
	scanOpts.Progress = opts.Progress
	s.scanner = scan.New(registry, builtIn, external, scanOpts)

	return s, nil
}

func resolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// Close releases the result cache.
func (s *scanSession) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// RunOnce discovers, scans and writes the report.
func (s *scanSession) RunOnce(ctx context.Context) (*report.Report, error) {
	if s.cfg.Scan.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Scan.Timeout)
		defer cancel()
	}

	paths := make([]string, len(s.roots))
	for i, r := range s.roots {
		paths[i] = r.path
	}
	files, err := s.discovery.Discover(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	started := time.Now()
	result, err := s.scanner.Run(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	for _, path := range result.Skipped {
		s.logger.Debug("no provider for file", "path", path)
	}

	rep := report.NewReport(result.Literals, started)
	if err := writeReport(ctx, s.cfg.Output, rep, s.stdout); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.Info("report written",
		"path", s.cfg.Output.Path,
		"format", s.cfg.Output.Format,
		"run_id", rep.RunID,
		"literals", len(rep.Literals),
		"failed_providers", len(result.Failures))
	return rep, nil
}

// Watch scans once, then again after every batch of changes until ctx is
// cancelled. Failed re-scans are logged and watching continues.
func (s *scanSession) Watch(ctx context.Context) error {
	if _, err := s.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error("initial scan failed", "error", err)
	}

	fw, err := watcher.NewFileWatcher(s.watchDirs(), watcher.Options{
		Match:   s.matches,
		SkipDir: s.skipDir,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	changes := newChangeSet()
	if err := fw.Start(ctx, changes.add); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.logger.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes.signal:
			files := changes.take()
			if len(files) == 0 {
				continue
			}
			s.logger.Info("files changed, re-scanning", "count", len(files))

			fw.Pause()
			if _, err := s.RunOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return nil
				}
				s.logger.Error("scan failed", "error", err)
			}
			fw.Resume()
		}
	}
}

// watchDirs returns the directories to watch: directory roots themselves
// and the parents of file roots.
func (s *scanSession) watchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, r := range s.roots {
		dir := r.path
		if !r.isDir {
			dir = filepath.Dir(r.path)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// matches reports whether a change to path affects the next scan.
func (s *scanSession) matches(path string) bool {
	for _, r := range s.roots {
		if !r.isDir {
			if path == r.path {
				return true
			}
			continue
		}
		if s.discovery.Matches(r.path, path) {
			return true
		}
	}
	return false
}

// skipDir reports whether every root containing dir ignores it.
func (s *scanSession) skipDir(dir string) bool {
	for _, r := range s.roots {
		if r.isDir && within(r.path, dir) && !s.discovery.Ignored(r.path, dir) {
			return false
		}
	}
	return true
}

// within reports whether path is base or below it.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// changeSet accumulates changed files between scans without ever blocking
// the watcher.
type changeSet struct {
	mu     sync.Mutex
	files  map[string]bool
	signal chan struct{}
}

func newChangeSet() *changeSet {
	return &changeSet{files: make(map[string]bool), signal: make(chan struct{}, 1)}
}

func (c *changeSet) add(files []string) {
	c.mu.Lock()
	for _, f := range files {
		c.files[f] = true
	}
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *changeSet) take() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make([]string, 0, len(c.files))
	for f := range c.files {
		files = append(files, f)
	}
	c.files = make(map[string]bool)
	return files
}
