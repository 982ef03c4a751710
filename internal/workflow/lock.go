package workflow

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"scribe/internal/tracker"
)

// LockFileName is the run lock file inside the output root's state
// directory.
const LockFileName = "run.lock"

// acquireRunLock takes the per-output-root run lock. Two concurrent runs
// against the same output root would race each other's startup
// reconciliation, so the second run is refused outright.
func acquireRunLock(outputRoot string) (*flock.Flock, error) {
	lockPath := filepath.Join(tracker.StateDir(outputRoot), LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrRunActive, lockPath)
	}
	return lock, nil
}
