// Package openal is a Backend over the system OpenAL library. The library is
// loaded at run time, so binaries build without OpenAL headers and fail over
// to backend.ErrUnavailable when it is missing.
package openal

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/loaders"
)

const (
	alNoError        = 0
	alPitch          = 0x1003
	alLooping        = 0x1007
	alBuffer         = 0x1009
	alGain           = 0x100A
	alSourceState    = 0x1010
	alInitial        = 0x1011
	alPlaying        = 0x1012
	alPaused         = 0x1013
	alStopped        = 0x1014
	alFormatMono16   = 0x1101
	alFormatStereo16 = 0x1103
)

type Options struct {
	// Library overrides the shared library path.
	Library string
	Logger  *slog.Logger
}

// funcs are the OpenAL entry points, bound by Open.
type funcs struct {
	alcOpenDevice         func(name *byte) uintptr
	alcCloseDevice        func(device uintptr) bool
	alcCreateContext      func(device uintptr, attrs *int32) uintptr
	alcDestroyContext     func(ctx uintptr)
	alcMakeContextCurrent func(ctx uintptr) bool

	alGetError      func() int32
	alGenSources    func(n int32, sources *uint32)
	alDeleteSources func(n int32, sources *uint32)
	alGenBuffers    func(n int32, buffers *uint32)
	alDeleteBuffers func(n int32, buffers *uint32)
	alBufferData    func(buffer uint32, format int32, data *int16, size int32, freq int32)
	alSourcei       func(source uint32, param int32, value int32)
	alSourcef       func(source uint32, param int32, value float32)
	alGetSourcei    func(source uint32, param int32, value *int32)
	alSourcePlay    func(source uint32)
	alSourceStop    func(source uint32)
	alListenerf     func(param int32, value float32)
}

type Backend struct {
	opts   Options
	logger *slog.Logger

	m      sync.Mutex
	lib    uintptr
	device uintptr
	ctx    uintptr
	al     funcs
}

var _ backend.Backend = (*Backend)(nil)

func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Backend{opts: opts, logger: opts.Logger.With("module", "backend.openal")}
}

func (b *Backend) Name() string { return "openal" }

func (b *Backend) Open() error {
	b.m.Lock()
	defer b.m.Unlock()
	if b.ctx != 0 {
		return nil
	}

	lib, err := openLibrary(b.opts.Library)
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	if err := b.al.bind(lib); err != nil {
		closeLibrary(lib)
		return fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}

	device := b.al.alcOpenDevice(nil)
	if device == 0 {
		closeLibrary(lib)
		return fmt.Errorf("%w: alcOpenDevice failed", backend.ErrUnavailable)
	}
	ctx := b.al.alcCreateContext(device, nil)
	if ctx == 0 || !b.al.alcMakeContextCurrent(ctx) {
		if ctx != 0 {
			b.al.alcDestroyContext(ctx)
		}
		b.al.alcCloseDevice(device)
		closeLibrary(lib)
		return fmt.Errorf("%w: alcCreateContext failed", backend.ErrUnavailable)
	}

	b.lib, b.device, b.ctx = lib, device, ctx
	b.logger.Info("device opened")
	return nil
}

func (b *Backend) Close() error {
	b.m.Lock()
	defer b.m.Unlock()
	if b.ctx == 0 {
		return nil
	}
	b.al.alcMakeContextCurrent(0)
	b.al.alcDestroyContext(b.ctx)
	ok := b.al.alcCloseDevice(b.device)
	closeLibrary(b.lib)
	b.lib, b.device, b.ctx = 0, 0, 0
	b.al = funcs{}
	b.logger.Info("device closed")
	if !ok {
		return fmt.Errorf("openal: alcCloseDevice failed")
	}
	return nil
}

func (b *Backend) ready() bool {
	b.m.Lock()
	defer b.m.Unlock()
	return b.ctx != 0
}

// clearError discards an error left by an earlier unchecked call, so that
// checkError reports only the call that follows.
func (b *Backend) clearError() {
	b.al.alGetError()
}

func (b *Backend) checkError(op string) error {
	if code := b.al.alGetError(); code != alNoError {
		return fmt.Errorf("openal: %s: error 0x%04X", op, code)
	}
	return nil
}

func (b *Backend) GenSources(n int) ([]backend.Source, error) {
	if !b.ready() {
		return nil, backend.ErrUnavailable
	}
	if n <= 0 {
		return nil, nil
	}
	ids := make([]uint32, n)
	b.clearError()
	b.al.alGenSources(int32(n), &ids[0])
	if err := b.checkError("alGenSources"); err != nil {
		return nil, err
	}
	out := make([]backend.Source, n)
	for i, id := range ids {
		out[i] = backend.Source(id)
	}
	return out, nil
}

func (b *Backend) DeleteSources(sources []backend.Source) {
	if len(sources) == 0 || !b.ready() {
		return
	}
	ids := make([]uint32, len(sources))
	for i, s := range sources {
		ids[i] = uint32(s)
	}
	b.al.alDeleteSources(int32(len(ids)), &ids[0])
}

func (b *Backend) GenBuffers(n int) ([]backend.Buffer, error) {
	if !b.ready() {
		return nil, backend.ErrUnavailable
	}
	if n <= 0 {
		return nil, nil
	}
	ids := make([]uint32, n)
	b.clearError()
	b.al.alGenBuffers(int32(n), &ids[0])
	if err := b.checkError("alGenBuffers"); err != nil {
		return nil, err
	}
	out := make([]backend.Buffer, n)
	for i, id := range ids {
		out[i] = backend.Buffer(id)
	}
	return out, nil
}

func (b *Backend) DeleteBuffers(buffers []backend.Buffer) {
	if len(buffers) == 0 || !b.ready() {
		return
	}
	ids := make([]uint32, len(buffers))
	for i, buf := range buffers {
		ids[i] = uint32(buf)
	}
	b.al.alDeleteBuffers(int32(len(ids)), &ids[0])
}

// BufferData uploads samples as signed 16-bit PCM. Channels beyond the
// second are dropped. OpenAL rejects uploads into a buffer that a playing
// source still holds.
func (b *Backend) BufferData(buf backend.Buffer, samples *loaders.Samples) error {
	if !b.ready() {
		return backend.ErrUnavailable
	}
	pcm, format := toPCM16(samples)
	if len(pcm) == 0 {
		return fmt.Errorf("openal: empty buffer data")
	}
	b.clearError()
	b.al.alBufferData(uint32(buf), format, &pcm[0], int32(len(pcm)*2), int32(samples.SampleRate))
	runtime.KeepAlive(pcm)
	return b.checkError("alBufferData")
}

func toPCM16(samples *loaders.Samples) ([]int16, int32) {
	channels := min(samples.Channels, 2)
	format := int32(alFormatMono16)
	if channels == 2 {
		format = alFormatStereo16
	}
	frames := samples.Frames()
	out := make([]int16, frames*channels)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			v := samples.Data[f*samples.Channels+c]
			v = max(-1, min(1, v))
			out[f*channels+c] = int16(v * 32767)
		}
	}
	return out, format
}

func (b *Backend) Attach(src backend.Source, buf backend.Buffer) {
	if b.ready() {
		b.al.alSourcei(uint32(src), alBuffer, int32(buf))
	}
}

func (b *Backend) Detach(src backend.Source) {
	if b.ready() {
		b.al.alSourcei(uint32(src), alBuffer, 0)
	}
}

func (b *Backend) SetGain(src backend.Source, gain float32) {
	if b.ready() {
		b.al.alSourcef(uint32(src), alGain, gain)
	}
}

func (b *Backend) SetPitch(src backend.Source, pitch float32) {
	if b.ready() {
		b.al.alSourcef(uint32(src), alPitch, pitch)
	}
}

func (b *Backend) SetLooping(src backend.Source, looping bool) {
	if !b.ready() {
		return
	}
	var v int32
	if looping {
		v = 1
	}
	b.al.alSourcei(uint32(src), alLooping, v)
}

func (b *Backend) Play(src backend.Source) {
	if b.ready() {
		b.al.alSourcePlay(uint32(src))
	}
}

func (b *Backend) Stop(src backend.Source) {
	if b.ready() {
		b.al.alSourceStop(uint32(src))
	}
}

func (b *Backend) State(src backend.Source) backend.SourceState {
	if !b.ready() {
		return backend.Stopped
	}
	var v int32
	b.al.alGetSourcei(uint32(src), alSourceState, &v)
	return sourceState(v)
}

func sourceState(v int32) backend.SourceState {
	switch v {
	case alPlaying:
		return backend.Playing
	case alPaused:
		return backend.Paused
	case alStopped:
		return backend.Stopped
	}
	return backend.Initial
}

func (b *Backend) SetListenerGain(gain float32) {
	if b.ready() {
		b.al.alListenerf(alGain, gain)
	}
}

// bind resolves every entry point. purego panics on a missing symbol, which
// is turned into an error here.
func (f *funcs) bind(lib uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("openal: binding symbols: %v", r)
		}
	}()
	purego.RegisterLibFunc(&f.alcOpenDevice, lib, "alcOpenDevice")
	purego.RegisterLibFunc(&f.alcCloseDevice, lib, "alcCloseDevice")
	purego.RegisterLibFunc(&f.alcCreateContext, lib, "alcCreateContext")
	purego.RegisterLibFunc(&f.alcDestroyContext, lib, "alcDestroyContext")
	purego.RegisterLibFunc(&f.alcMakeContextCurrent, lib, "alcMakeContextCurrent")
	purego.RegisterLibFunc(&f.alGetError, lib, "alGetError")
	purego.RegisterLibFunc(&f.alGenSources, lib, "alGenSources")
	purego.RegisterLibFunc(&f.alDeleteSources, lib, "alDeleteSources")
	purego.RegisterLibFunc(&f.alGenBuffers, lib, "alGenBuffers")
	purego.RegisterLibFunc(&f.alDeleteBuffers, lib, "alDeleteBuffers")
	purego.RegisterLibFunc(&f.alBufferData, lib, "alBufferData")
	purego.RegisterLibFunc(&f.alSourcei, lib, "alSourcei")
	purego.RegisterLibFunc(&f.alSourcef, lib, "alSourcef")
	purego.RegisterLibFunc(&f.alGetSourcei, lib, "alGetSourcei")
	purego.RegisterLibFunc(&f.alSourcePlay, lib, "alSourcePlay")
	purego.RegisterLibFunc(&f.alSourceStop, lib, "alSourceStop")
	purego.RegisterLibFunc(&f.alListenerf, lib, "alListenerf")
	return nil
}
