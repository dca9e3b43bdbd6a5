package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to a file name to form its lock file.
const LockSuffix = ".gocharset.lock"

const lockRetryDelay = 50 * time.Millisecond

// FileLock is an advisory inter-process lock guarding one file while it is
// read, converted and rewritten.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// Lock blocks until it holds the lock for path, or ctx ends.
// The lock lives in a sidecar <path>.gocharset.lock file.
func Lock(ctx context.Context, path string) (*FileLock, error) {
	lockPath := path + LockSuffix
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire lock on %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock on %s: %w", path, ctx.Err())
	}

	return &FileLock{flock: fl, path: lockPath}, nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Unlock releases the lock and removes the lock file.
func (l *FileLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock %s: %w", l.path, err)
	}
	return nil
}
