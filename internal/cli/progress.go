package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/project-strings/internal/scan"
)

// CLIProgressReporter implements scan.ProgressReporter with a progress bar
// over files.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	mu      sync.Mutex
	fileBar *progressbar.ProgressBar
	failed  []string
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnScanStart(files, batches int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "Scanning %s files with %d providers\n", formatNumber(files), batches)
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnBatchComplete(provider string, files int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.failed = append(c.failed, provider)
	}
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(files)
}

func (c *CLIProgressReporter) OnScanComplete(stats scan.Stats) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Scan complete: %s literals in %.1fs\n",
		formatNumber(stats.Literals), stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Files:   %s\n", formatNumber(stats.Files))
	if stats.Skipped > 0 {
		fmt.Fprintf(c.out, "  Skipped: %s (no provider)\n", formatNumber(stats.Skipped))
	}
	if stats.Failed > 0 {
		fmt.Fprintf(c.out, "  Failed:  %d providers %v\n", stats.Failed, c.failed)
	}
	c.failed = nil
}

// formatNumber groups thousands with commas.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
