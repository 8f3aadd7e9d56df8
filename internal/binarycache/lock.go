package binarycache

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var lockPollInterval = 100 * time.Millisecond

const manifestLockName = "manifest"

// acquireLock takes an OS advisory lock on <root>/<name>.lock, polling until
// ctx ends. The lock file may outlive the process; the lock itself does not,
// so an interrupted install never blocks later ones.
func acquireLock(ctx context.Context, root, name string) (func(), error) {
	lock := flock.New(filepath.Join(root, name+".lock"))
	locked, err := lock.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire %s lock: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire %s lock: %w", name, ctx.Err())
	}
	return func() { _ = lock.Unlock() }, nil
}
