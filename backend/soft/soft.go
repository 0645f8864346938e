// Package soft is a software Backend: sources are mixed in process and the
// result is written to a playback device.
package soft

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/loaders"
)

const (
	DeviceMalgo = "malgo"
	DeviceNull  = "null"
	// DeviceNone produces no output; the caller drives the mix with Mix.
	DeviceNone = "none"
)

const (
	DefaultSampleRate = 44100
	DefaultPeriod     = 10 * time.Millisecond
)

type Options struct {
	// Device is one of DeviceMalgo, DeviceNull or DeviceNone.
	// Empty means DeviceMalgo.
	Device string
	// SampleRate of the output. Buffers with another rate play at the ratio.
	SampleRate int
	// Period is the device callback period.
	Period time.Duration
	Logger *slog.Logger
}

// device pulls mixed audio from a mixer until closed.
type device interface {
	close() error
}

type Backend struct {
	opts   Options
	logger *slog.Logger
	mix    *mixer

	m      sync.Mutex
	device device
	open   bool
}

var _ backend.Backend = (*Backend)(nil)

func New(opts Options) *Backend {
	if opts.Device == "" {
		opts.Device = DeviceMalgo
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Backend{
		opts:   opts,
		logger: opts.Logger.With("module", "backend.soft"),
		mix:    newMixer(opts.SampleRate),
	}
}

func (b *Backend) Name() string { return "soft/" + b.opts.Device }

func (b *Backend) SampleRate() int { return b.opts.SampleRate }

func (b *Backend) Open() error {
	b.m.Lock()
	defer b.m.Unlock()
	if b.open {
		return nil
	}

	var (
		dev device
		err error
	)
	switch b.opts.Device {
	case DeviceMalgo:
		dev, err = newMalgoDevice(b.mix, b.opts.SampleRate, b.opts.Period)
	case DeviceNull:
		dev = newNullDevice(b.mix, b.opts.SampleRate, b.opts.Period)
	case DeviceNone:
	default:
		err = fmt.Errorf("unknown device %q", b.opts.Device)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	b.device = dev
	b.open = true
	b.logger.Info("device opened", "device", b.opts.Device, "sample_rate", b.opts.SampleRate)
	return nil
}

func (b *Backend) Close() error {
	b.m.Lock()
	defer b.m.Unlock()
	if !b.open {
		return nil
	}
	var err error
	if b.device != nil {
		err = b.device.close()
		b.device = nil
	}
	b.mix.reset()
	b.open = false
	b.logger.Info("device closed", "device", b.opts.Device)
	return err
}

// Mix renders the next len(buf)/2 stereo frames into buf. Devices call it
// from their own goroutine; with DeviceNone tests call it directly.
func (b *Backend) Mix(buf []float32) {
	b.mix.ReadFloat32s(buf)
}

func (b *Backend) GenSources(n int) ([]backend.Source, error) {
	return b.mix.genSources(n), nil
}

func (b *Backend) DeleteSources(sources []backend.Source) {
	b.mix.deleteSources(sources)
}

func (b *Backend) GenBuffers(n int) ([]backend.Buffer, error) {
	return b.mix.genBuffers(n), nil
}

func (b *Backend) DeleteBuffers(buffers []backend.Buffer) {
	b.mix.deleteBuffers(buffers)
}

func (b *Backend) BufferData(buf backend.Buffer, samples *loaders.Samples) error {
	if samples == nil || samples.Frames() == 0 {
		return fmt.Errorf("soft: empty buffer data")
	}
	if !b.mix.bufferData(buf, samples) {
		return fmt.Errorf("soft: unknown buffer %d", buf)
	}
	return nil
}

func (b *Backend) Attach(src backend.Source, buf backend.Buffer) {
	b.mix.with(src, func(s *source) {
		s.buffer, s.attached = buf, true
		s.state, s.pos = backend.Initial, 0
	})
}

func (b *Backend) Detach(src backend.Source) {
	b.mix.with(src, func(s *source) {
		s.buffer, s.attached = 0, false
		s.state, s.pos = backend.Initial, 0
	})
}

func (b *Backend) SetGain(src backend.Source, gain float32) {
	b.mix.with(src, func(s *source) { s.gain = gain })
}

func (b *Backend) SetPitch(src backend.Source, pitch float32) {
	b.mix.with(src, func(s *source) { s.pitch = pitch })
}

func (b *Backend) SetLooping(src backend.Source, looping bool) {
	b.mix.with(src, func(s *source) { s.looping = looping })
}

// Play starts src from the beginning, or resumes it when paused.
func (b *Backend) Play(src backend.Source) {
	b.mix.with(src, func(s *source) {
		if s.state != backend.Paused {
			s.pos = 0
		}
		s.state = backend.Playing
	})
}

func (b *Backend) Stop(src backend.Source) {
	b.mix.with(src, func(s *source) {
		s.state, s.pos = backend.Stopped, 0
	})
}

func (b *Backend) State(src backend.Source) backend.SourceState {
	return b.mix.state(src)
}

func (b *Backend) SetListenerGain(gain float32) {
	b.mix.setListenerGain(gain)
}
