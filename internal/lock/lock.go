// Package lock keeps two scans of the same project from writing the same
// report at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another scan is running")

// retryDelay is how often a waiting Acquire polls the lock.
const retryDelay = 100 * time.Millisecond

// ProjectLock is an advisory file lock under a project's state directory.
type ProjectLock struct {
	path string
	lock *flock.Flock
}

// New creates a lock named name.lock in dir. Nothing is locked yet.
func New(dir, name string) *ProjectLock {
	return &ProjectLock{path: filepath.Join(dir, name+".lock")}
}

// Path returns the lock file path.
func (l *ProjectLock) Path() string {
	return l.path
}

// TryAcquire takes the lock without waiting. It returns ErrLocked if
// another process holds it.
func (l *ProjectLock) TryAcquire() error {
	fl, err := l.open()
	if err != nil {
		return err
	}

	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is held", ErrLocked, l.path)
	}

	l.lock = fl
	return nil
}

// Acquire waits for the lock until ctx is done.
func (l *ProjectLock) Acquire(ctx context.Context) error {
	fl, err := l.open()
	if err != nil {
		return err
	}

	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s is held: %w", ErrLocked, l.path, ctx.Err())
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is held", ErrLocked, l.path)
	}

	l.lock = fl
	return nil
}

func (l *ProjectLock) open() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return flock.New(l.path), nil
}

// Release releases the lock. Releasing a lock never acquired is a no-op.
func (l *ProjectLock) Release() error {
	if l.lock == nil {
		return nil
	}
	err := l.lock.Unlock()
	l.lock = nil
	return err
}
