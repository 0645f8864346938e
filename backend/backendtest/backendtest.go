// Package backendtest provides an in-memory Backend for tests.
package backendtest

import (
	"fmt"
	"sync"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/loaders"
)

// SourceInfo is a snapshot of a fake source.
type SourceInfo struct {
	Buffer   backend.Buffer
	Attached bool
	Gain     float32
	Pitch    float32
	Looping  bool
	State    backend.SourceState
	Plays    int
}

// Backend is a fake backend. Sources never finish on their own; call Finish
// to simulate a sound reaching its end.
type Backend struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error
	// BufferErr, when set, is returned by BufferData.
	BufferErr error

	mu           sync.Mutex
	open         bool
	nextHandle   uint32
	sources      map[backend.Source]*SourceInfo
	buffers      map[backend.Buffer]*loaders.Samples
	listenerGain float32
}

var _ backend.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		sources:      map[backend.Source]*SourceInfo{},
		buffers:      map[backend.Buffer]*loaders.Samples{},
		listenerGain: 1,
	}
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) Open() error {
	if b.OpenErr != nil {
		return b.OpenErr
	}
	b.mu.Lock()
	b.open = true
	b.mu.Unlock()
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	b.open = false
	b.mu.Unlock()
	return nil
}

func (b *Backend) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *Backend) GenSources(n int) ([]backend.Source, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil, fmt.Errorf("backendtest: not open")
	}
	out := make([]backend.Source, n)
	for i := range out {
		b.nextHandle++
		out[i] = backend.Source(b.nextHandle)
		b.sources[out[i]] = &SourceInfo{Gain: 1, Pitch: 1}
	}
	return out, nil
}

func (b *Backend) DeleteSources(sources []backend.Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range sources {
		delete(b.sources, s)
	}
}

func (b *Backend) GenBuffers(n int) ([]backend.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil, fmt.Errorf("backendtest: not open")
	}
	out := make([]backend.Buffer, n)
	for i := range out {
		b.nextHandle++
		out[i] = backend.Buffer(b.nextHandle)
		b.buffers[out[i]] = nil
	}
	return out, nil
}

func (b *Backend) DeleteBuffers(buffers []backend.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, buf := range buffers {
		delete(b.buffers, buf)
	}
}

func (b *Backend) BufferData(buf backend.Buffer, samples *loaders.Samples) error {
	if b.BufferErr != nil {
		return b.BufferErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buffers[buf]; !ok {
		return fmt.Errorf("backendtest: unknown buffer %d", buf)
	}
	b.buffers[buf] = samples
	return nil
}

func (b *Backend) with(src backend.Source, fn func(s *SourceInfo)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		fn(s)
	}
}

func (b *Backend) Attach(src backend.Source, buf backend.Buffer) {
	b.with(src, func(s *SourceInfo) {
		s.Buffer, s.Attached = buf, true
		s.State = backend.Initial
	})
}

func (b *Backend) Detach(src backend.Source) {
	b.with(src, func(s *SourceInfo) {
		s.Buffer, s.Attached = 0, false
	})
}

func (b *Backend) SetGain(src backend.Source, gain float32) {
	b.with(src, func(s *SourceInfo) { s.Gain = gain })
}

func (b *Backend) SetPitch(src backend.Source, pitch float32) {
	b.with(src, func(s *SourceInfo) { s.Pitch = pitch })
}

func (b *Backend) SetLooping(src backend.Source, looping bool) {
	b.with(src, func(s *SourceInfo) { s.Looping = looping })
}

func (b *Backend) Play(src backend.Source) {
	b.with(src, func(s *SourceInfo) {
		s.State = backend.Playing
		s.Plays++
	})
}

func (b *Backend) Stop(src backend.Source) {
	b.with(src, func(s *SourceInfo) { s.State = backend.Stopped })
}

func (b *Backend) State(src backend.Source) backend.SourceState {
	state := backend.Initial
	b.with(src, func(s *SourceInfo) { state = s.State })
	return state
}

func (b *Backend) SetListenerGain(gain float32) {
	b.mu.Lock()
	b.listenerGain = gain
	b.mu.Unlock()
}

func (b *Backend) ListenerGain() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listenerGain
}

// Finish marks a playing source as having reached the end of its data.
// Looping sources are left alone, as a real device would.
func (b *Backend) Finish(src backend.Source) {
	b.with(src, func(s *SourceInfo) {
		if s.State == backend.Playing && !s.Looping {
			s.State = backend.Stopped
		}
	})
}

// Source returns a snapshot of src.
func (b *Backend) Source(src backend.Source) (SourceInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return SourceInfo{}, false
	}
	return *s, true
}

// Sources returns the live source handles in creation order.
func (b *Backend) Sources() []backend.Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backend.Source, 0, len(b.sources))
	for h := uint32(1); h <= b.nextHandle; h++ {
		if _, ok := b.sources[backend.Source(h)]; ok {
			out = append(out, backend.Source(h))
		}
	}
	return out
}

// BufferSamples returns what was last uploaded into buf.
func (b *Backend) BufferSamples(buf backend.Buffer) *loaders.Samples {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffers[buf]
}

// Counts returns the number of live sources and buffers.
func (b *Backend) Counts() (sources, buffers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sources), len(b.buffers)
}
