package revocation

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the background sweeper checks the
// registry against its ceiling.
const DefaultSweepInterval = time.Hour

// RunSweeper periodically sweeps the store until ctx is cancelled. It is the
// scheduler the registry itself deliberately does not own: exactly one
// sweeper goroutine runs per store, so sweeps never overlap. onSweep, if
// non-nil, is invoked with the number of cleared entries after every sweep
// that actually dropped anything.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, onSweep func(cleared int)) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cleared := store.Sweep(); cleared > 0 && onSweep != nil {
				onSweep(cleared)
			}
		}
	}
}
