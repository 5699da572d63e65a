package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// relevantOps are the events that can change the literals of a file.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Options configure a file watcher. Zero values are usable.
type Options struct {
	// Debounce is the quiet period before changes are reported.
	Debounce time.Duration
	// Match selects the files whose changes are reported. Nil matches all.
	Match func(path string) bool
	// SkipDir selects directories that are never watched.
	SkipDir func(dir string) bool
	Logger  *slog.Logger
}

type fileWatcher struct {
	fs   *fsnotify.Watcher
	opts Options

	mu      sync.Mutex
	pending map[string]struct{}
	paused  bool
	onBatch func(files []string)

	cancel context.CancelFunc
	done   chan struct{}
	stop   sync.Once
}

// NewFileWatcher creates a watcher over the given directories and all
// directories below them.
func NewFileWatcher(dirs []string, opts Options) (FileWatcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{
		fs:      fs,
		opts:    opts,
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := fw.addTree(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}
	fw.mu.Lock()
	fw.onBatch = callback
	fw.mu.Unlock()

	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.loop(ctx)
	return nil
}

func (fw *fileWatcher) Stop() error {
	var err error
	fw.stop.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.done
		}
		err = fw.fs.Close()
	})
	return err
}

func (fw *fileWatcher) Pause() {
	fw.mu.Lock()
	fw.paused = true
	fw.mu.Unlock()
}

func (fw *fileWatcher) Resume() {
	fw.mu.Lock()
	fw.paused = false
	fw.mu.Unlock()
	fw.flush()
}

func (fw *fileWatcher) loop(ctx context.Context) {
	defer close(fw.done)

	quiet := time.NewTimer(fw.opts.Debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			if fw.record(ev) {
				quiet.Reset(fw.opts.Debounce)
			}
		case <-quiet.C:
			fw.flush()
		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			fw.opts.Logger.Warn("file watcher error", "error", err)
		}
	}
}

// record adds the file of ev to the pending batch and reports whether it
// did. A created directory is watched instead.
func (fw *fileWatcher) record(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fw.addTree(ev.Name); err != nil {
				fw.opts.Logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return false
		}
	}
	if ev.Op&relevantOps == 0 {
		return false
	}
	if fw.opts.Match != nil && !fw.opts.Match(ev.Name) {
		return false
	}

	fw.mu.Lock()
	fw.pending[ev.Name] = struct{}{}
	fw.mu.Unlock()
	return true
}

// flush hands the pending files, sorted, to the callback. While paused the
// batch keeps growing until Resume.
func (fw *fileWatcher) flush() {
	fw.mu.Lock()
	if fw.paused || len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for name := range fw.pending {
		files = append(files, name)
	}
	clear(fw.pending)
	onBatch := fw.onBatch
	fw.mu.Unlock()

	sort.Strings(files)
	fw.opts.Logger.Debug("files changed", "count", len(files))
	if onBatch != nil {
		onBatch(files)
	}
}

// addTree watches root and every directory below it that SkipDir allows.
func (fw *fileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil && path == root:
			return err
		case err != nil:
			fw.opts.Logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		case !d.IsDir():
			return nil
		case path != root && fw.opts.SkipDir != nil && fw.opts.SkipDir(path):
			return filepath.SkipDir
		}
		if err := fw.fs.Add(path); err != nil {
			fw.opts.Logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
