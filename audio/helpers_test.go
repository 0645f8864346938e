package audio_test

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"

	"github.com/Lundis/go-voicepool/audio"
	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/backend/backendtest"
	"github.com/Lundis/go-voicepool/codec"
	"github.com/Lundis/go-voicepool/loaders"
	"github.com/Lundis/go-voicepool/loaders/raw"
)

// frames is two silent stereo frames of s16le.
const frames = "\x00\x00\x00\x00\x00\x00\x00\x00"

// loud is two full scale stereo frames.
const loud = "\xff\x7f\xff\x7f\xff\x7f\xff\x7f"

var assets = mapfs.New(map[string]string{
	"a.wav":     frames,
	"b.wav":     frames,
	"c.wav":     frames,
	"d.wav":     frames,
	"e.wav":     frames,
	"theme.ogg": frames,
	"loop.wav":  frames,
	"loud.wav":  loud,
	"bad.wav":   "\x01",
})

// testDecoders decodes every test asset as raw PCM regardless of extension.
func testDecoders() *loaders.Registry {
	r := loaders.NewRegistry()
	r.Register(codec.WAV, raw.Decoder{})
	r.Register(codec.OGG, raw.Decoder{})
	return r
}

type fixture struct {
	engine  *audio.Engine
	backend *backendtest.Backend
}

func newFixture(t *testing.T, opts audio.Options) *fixture {
	t.Helper()
	b := backendtest.New()
	if opts.Assets == nil {
		opts.Assets = assets
	}
	if opts.Decoders == nil {
		opts.Decoders = testDecoders()
	}
	if opts.ReapInterval == 0 {
		opts.ReapInterval = -1
	}
	e := audio.New(b, opts)
	require.NoError(t, e.Init())
	t.Cleanup(func() { _ = e.Shutdown() })
	return &fixture{engine: e, backend: b}
}

// source returns the backend source behind slot.
func (f *fixture) source(t *testing.T, slot int) backend.Source {
	t.Helper()
	srcs := f.backend.Sources()
	require.Less(t, slot, len(srcs))
	return srcs[slot]
}

func (f *fixture) play(t *testing.T, name string, priority int) audio.PlaybackID {
	t.Helper()
	id, err := f.engine.PlaySound(name, 1, false, priority)
	require.NoError(t, err)
	return id
}

// slotOf returns the slot holding id, or -1.
func (f *fixture) slotOf(id audio.PlaybackID) int {
	for _, v := range f.engine.Voices() {
		if v.ID == id && v.State != audio.Free {
			return v.Slot
		}
	}
	return -1
}

// recorder collects completion notifications.
type recorder struct {
	mu  sync.Mutex
	ids []audio.PlaybackID
}

func (r *recorder) record(id audio.PlaybackID) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *recorder) got() []audio.PlaybackID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audio.PlaybackID(nil), r.ids...)
}

// countingDecoder counts decodes and delegates to raw.
type countingDecoder struct {
	n atomic.Int32
}

func (d *countingDecoder) Decode(r io.Reader) (*loaders.Samples, error) {
	d.n.Add(1)
	return raw.Decoder{}.Decode(r)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
