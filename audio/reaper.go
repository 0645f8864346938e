package audio

import (
	"context"
	"sync"
	"time"
)

// DefaultReapInterval matches a 60 Hz game loop.
const DefaultReapInterval = 16666 * time.Microsecond

// reaper calls tick at a fixed interval until stopped.
type reaper struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func startReaper(interval time.Duration, tick func()) *reaper {
	ctx, cancel := context.WithCancel(context.Background())
	r := &reaper{cancel: cancel}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
	return r
}

// stop cancels the reaper and waits for an in-flight tick to return.
func (r *reaper) stop() {
	r.cancel()
	r.wg.Wait()
}
