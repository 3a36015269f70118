// Package sessionlock guarantees at most one recording or post-process run
// per data directory.
package sessionlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"castro/internal/services"
)

// FileName is the lock file created inside the data directory.
const FileName = "castro.lock"

// Lock is a held single-session lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for dataDir without blocking. A lock already held by
// another process fails with services.ErrInvalidState.
func Acquire(dataDir string) (*Lock, error) {
	path := filepath.Join(dataDir, FileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "sessionlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrInvalidState, "sessionlock", "acquire",
			fmt.Sprintf("another castro session is already using %s", dataDir), nil)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return services.Wrap(services.ErrFilesystem, "sessionlock", "release", l.path, err)
	}
	return nil
}
