// Package backend defines the device layer the engine drives.
//
// A Backend owns a set of sources (playable channels) and buffers (uploaded
// PCM). The engine attaches a buffer to a source, sets its gain, pitch and
// looping flag, starts it, and polls its state to notice natural completion.
// None of the methods block on playback.
package backend

import (
	"errors"

	"github.com/Lundis/go-voicepool/loaders"
)

// ErrUnavailable is returned by Open when no output device can be used.
var ErrUnavailable = errors.New("backend: device unavailable")

// Source is a backend playback channel handle.
type Source uint32

// Buffer is a backend PCM storage handle.
type Buffer uint32

type SourceState int

const (
	Initial SourceState = iota
	Playing
	Paused
	Stopped
)

func (s SourceState) String() string {
	switch s {
	case Initial:
		return "initial"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type Backend interface {
	Name() string

	Open() error
	Close() error

	GenSources(n int) ([]Source, error)
	DeleteSources(sources []Source)
	GenBuffers(n int) ([]Buffer, error)
	DeleteBuffers(buffers []Buffer)

	// BufferData replaces the contents of buf.
	BufferData(buf Buffer, samples *loaders.Samples) error

	Attach(src Source, buf Buffer)
	Detach(src Source)
	SetGain(src Source, gain float32)
	SetPitch(src Source, pitch float32)
	SetLooping(src Source, looping bool)
	Play(src Source)
	Stop(src Source)
	State(src Source) SourceState

	SetListenerGain(gain float32)
}
