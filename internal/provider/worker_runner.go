package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/mvp-joe/project-strings/internal/record"
)

// WorkerRunner runs a provider in a separate process. The process gets a
// file listing the batch and writes its findings to an output file in the
// record format.
type WorkerRunner struct {
	// Executable runs built-in providers as "<Executable> worker <name>
	// {input} {output}".
	Executable string
	// TempDir holds the per-batch exchange files. Empty means os.TempDir().
	TempDir string
	// Env is added to the environment of every worker.
	Env    []string
	Logger *slog.Logger
}

// NewWorkerRunner creates a worker runner that starts built-in providers
// through the running executable.
func NewWorkerRunner(logger *slog.Logger) (*WorkerRunner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerRunner{Executable: exe, Logger: logger}, nil
}

// Run starts one worker for the batch, logs its output and decodes its
// findings once it exits successfully.
func (r *WorkerRunner) Run(ctx context.Context, p Provider, files []string) ([]literal.Literal, error) {
	lits, err := r.run(ctx, p, files)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name, Files: files, Err: err}
	}
	return lits, nil
}

func (r *WorkerRunner) run(ctx context.Context, p Provider, files []string) ([]literal.Literal, error) {
	logger := r.logger().With("provider", p.Name)

	dir, err := os.MkdirTemp(r.TempDir, "strings-"+p.Name+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange directory: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.txt")
	output := filepath.Join(dir, "output.txt")
	if err := os.WriteFile(input, []byte(strings.Join(files, "\n")+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write file list: %w", err)
	}
	if err := os.WriteFile(output, nil, 0o600); err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	name, args := r.command(p, input, output)
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stderr: %w", err)
	}

	logger.Debug("starting worker", "command", name, "args", args, "files", len(files))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	// Both pipes must be drained before Wait, otherwise a chatty worker
	// blocks on a full pipe.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drain(stdout, logger.With("stream", "stdout"), slog.LevelInfo)
	}()
	go func() {
		defer wg.Done()
		drain(stderr, logger.With("stream", "stderr"), slog.LevelWarn)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrWorkerFailed, name, err)
	}

	f, err := os.Open(output)
	if err != nil {
		return nil, fmt.Errorf("failed to open worker output: %w", err)
	}
	defer f.Close()

	lits, err := record.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode worker output: %w", err)
	}
	logger.Debug("worker finished", "literals", len(lits))
	return lits, nil
}

// command resolves the program and arguments for one batch.
func (r *WorkerRunner) command(p Provider, input, output string) (string, []string) {
	name, args := p.Command, p.Args
	if p.BuiltIn() {
		name = r.Executable
		args = []string{"worker", p.Name, InputPlaceholder, OutputPlaceholder}
	} else if len(args) == 0 {
		args = []string{InputPlaceholder, OutputPlaceholder}
	}

	replacer := strings.NewReplacer(InputPlaceholder, input, OutputPlaceholder, output)
	resolved := make([]string, len(args))
	for i, a := range args {
		resolved[i] = replacer.Replace(a)
	}
	return name, resolved
}

func (r *WorkerRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// drain logs every line read from rd until it is exhausted.
func drain(rd io.Reader, logger *slog.Logger, level slog.Level) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		logger.Log(context.Background(), level, sc.Text())
	}
	if err := sc.Err(); err != nil {
		// Keep reading so the worker never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, rd)
	}
}
