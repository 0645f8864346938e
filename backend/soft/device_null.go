package soft

import (
	"context"
	"sync"
	"time"
)

// nullDevice discards the mix at real-time pace so that sources still reach
// their end when no audio hardware is present.
type nullDevice struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newNullDevice(mix *mixer, sampleRate int, period time.Duration) *nullDevice {
	frames := int(int64(sampleRate) * int64(period) / int64(time.Second))
	if frames <= 0 {
		frames = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &nullDevice{cancel: cancel}
	d.wg.Add(1)
	go d.loop(ctx, mix, make([]float32, frames*outputChannels), period)
	return d
}

func (d *nullDevice) loop(ctx context.Context, mix *mixer, buf []float32, period time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mix.ReadFloat32s(buf)
		}
	}
}

func (d *nullDevice) close() error {
	d.cancel()
	d.wg.Wait()
	return nil
}
