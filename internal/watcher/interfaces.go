// Package watcher reports batches of changed source files so that scans can
// be re-run as files are edited.
package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	// Callers pause while a scan triggered by the previous batch runs.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}
