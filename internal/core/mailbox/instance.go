package mailbox

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Instance is the exclusive claim a running process holds on an agent id
type Instance struct {
	lock *flock.Flock
}

// AcquireInstance locks <home>/.agentbox.lock without blocking. Only one
// process may serve an agent id at a time: two loops on the same home
// would race on every rename.
func AcquireInstance(home string) (*Instance, error) {
	if err := EnsureDir(home); err != nil {
		return nil, fmt.Errorf("failed to create agent home: %w", err)
	}

	lock := flock.New(filepath.Join(home, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrInstanceRunning, home)
	}
	return &Instance{lock: lock}, nil
}

// Release gives up the claim. The lock file itself is left in place.
func (i *Instance) Release() error {
	if i == nil || i.lock == nil {
		return nil
	}
	return i.lock.Unlock()
}
