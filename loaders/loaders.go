// Package loaders turns sound files into interleaved float32 PCM.
//
// Each container format lives in its own subpackage and implements Decoder.
// A Registry dispatches on the codec.Tag detected from the file name, and a
// Cache keeps decoded samples around so that frequently played effects are
// not decoded on every play.
package loaders

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Lundis/go-voicepool/codec"
	"golang.org/x/tools/godoc/vfs"
)

// Samples is decoded PCM audio.
//
//	[Data]     = [frame 1] [frame 2] ...
//	[frame *]  = [channel 1] [channel 2] ...
//
// Values are in [-1, 1]. Samples handed out by a Registry or Cache are shared
// and must be treated as read-only.
type Samples struct {
	Data       []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (s *Samples) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Data) / s.Channels
}

// Duration returns the playback length at the native sample rate.
func (s *Samples) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.SampleRate)
}

func (s *Samples) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("decoder returned no samples")
	case s.Channels <= 0:
		return fmt.Errorf("invalid channel count %d", s.Channels)
	case s.SampleRate <= 0:
		return fmt.Errorf("invalid sample rate %d", s.SampleRate)
	case len(s.Data) == 0:
		return fmt.Errorf("no audio data")
	}
	return nil
}

// Decoder decodes one container format.
type Decoder interface {
	Decode(r io.Reader) (*Samples, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (*Samples, error)

func (f DecoderFunc) Decode(r io.Reader) (*Samples, error) {
	return f(r)
}

// Registry maps codec tags to decoders. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[codec.Tag]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[codec.Tag]Decoder),
	}
}

// Register installs d for tag, replacing any previous decoder.
func (r *Registry) Register(tag codec.Tag, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[tag] = d
}

func (r *Registry) Lookup(tag codec.Tag) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[tag]
	return d, ok
}

// Decode reads path from fs and decodes it with the decoder registered for tag.
// It fails with ErrUnsupportedFormat when no decoder is registered and with
// ErrDecodeFailed for everything else.
func (r *Registry) Decode(fs vfs.Opener, tag codec.Tag, path string) (*Samples, error) {
	d, ok := r.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnsupportedFormat, tag)
	}
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecodeFailed, err)
	}
	defer file.Close()

	samples, err := d.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecodeFailed, err)
	}
	if err := samples.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecodeFailed, err)
	}
	return samples, nil
}
