// Package worker is the process side of the worker protocol: it reads a
// file list, extracts every file with a built-in extractor and appends the
// findings to an output file in the record format.
package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvp-joe/project-strings/internal/extractors"
	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/record"
)

// ErrUnknownExtractor is returned for a provider name without a built-in
// extractor.
var ErrUnknownExtractor = errors.New("unknown extractor")

// Run extracts every file named in the list at inputList and appends the
// records to output, creating it if needed. Progress lines go to log.
func Run(ctx context.Context, name, inputList, output string, log io.Writer) error {
	factory, ok := extractors.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtractor, name)
	}

	files, err := ReadFileList(inputList)
	if err != nil {
		return err
	}

	out, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	defer out.Close()

	enc := record.NewEncoder(out)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(log, "%s\n", path)
		if err := extract(ctx, factory, path, enc); err != nil {
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return out.Close()
}

// Single extracts one file and writes its records to w.
func Single(ctx context.Context, name, path string, w io.Writer) error {
	factory, ok := extractors.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtractor, name)
	}
	enc := record.NewEncoder(w)
	if err := extract(ctx, factory, path, enc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func extract(ctx context.Context, factory extractors.Factory, path string, enc *record.Encoder) error {
	lits, err := provider.ExtractFile(ctx, factory, path)
	if err != nil {
		return err
	}
	for _, l := range lits {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// ReadFileList reads one path per line, ignoring blank lines.
func ReadFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file list: %w", err)
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			files = append(files, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}
	return files, nil
}
