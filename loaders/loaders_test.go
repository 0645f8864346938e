package loaders_test

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lundis/go-voicepool/codec"
	"github.com/Lundis/go-voicepool/loaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"
)

// byteDecoder turns every input byte into one mono sample.
func byteDecoder(calls *atomic.Int32) loaders.Decoder {
	return loaders.DecoderFunc(func(r io.Reader) (*loaders.Samples, error) {
		if calls != nil {
			calls.Add(1)
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		data := make([]float32, len(raw))
		for i, b := range raw {
			data[i] = float32(b) / 255
		}
		return &loaders.Samples{Data: data, SampleRate: 8000, Channels: 1}, nil
	})
}

func TestSamplesFramesAndDuration(t *testing.T) {
	t.Parallel()

	s := &loaders.Samples{Data: make([]float32, 44100*2), SampleRate: 44100, Channels: 2}
	assert.Equal(t, 44100, s.Frames())
	assert.Equal(t, time.Second, s.Duration())

	empty := &loaders.Samples{}
	assert.Zero(t, empty.Frames())
	assert.Zero(t, empty.Duration())
}

func TestRegistryDecode(t *testing.T) {
	t.Parallel()

	fs := mapfs.New(map[string]string{
		"blip.raw": "\x00\xff",
	})
	r := loaders.NewRegistry()
	r.Register(codec.Raw, byteDecoder(nil))

	samples, err := r.Decode(fs, codec.Raw, "blip.raw")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, samples.Data)
	assert.Equal(t, 1, samples.Channels)
}

func TestRegistryUnsupported(t *testing.T) {
	t.Parallel()

	fs := mapfs.New(map[string]string{"a.mp3": "x"})
	r := loaders.NewRegistry()

	_, err := r.Decode(fs, codec.MP3, "a.mp3")
	require.ErrorIs(t, err, loaders.ErrUnsupportedFormat)

	_, err = r.Decode(fs, codec.Unknown, "a.txt")
	require.ErrorIs(t, err, loaders.ErrUnsupportedFormat)
}

func TestRegistryDecodeFailures(t *testing.T) {
	t.Parallel()

	fs := mapfs.New(map[string]string{
		"empty.raw": "",
		"bad.raw":   "x",
	})
	r := loaders.NewRegistry()
	r.Register(codec.Raw, byteDecoder(nil))
	boom := errors.New("boom")
	r.Register(codec.WAV, loaders.DecoderFunc(func(io.Reader) (*loaders.Samples, error) {
		return nil, boom
	}))

	_, err := r.Decode(fs, codec.Raw, "missing.raw")
	require.ErrorIs(t, err, loaders.ErrDecodeFailed)

	_, err = r.Decode(fs, codec.Raw, "empty.raw")
	require.ErrorIs(t, err, loaders.ErrDecodeFailed, "zero-length audio is rejected")

	fs2 := mapfs.New(map[string]string{"a.wav": "x"})
	_, err = r.Decode(fs2, codec.WAV, "a.wav")
	require.ErrorIs(t, err, loaders.ErrDecodeFailed)
	require.ErrorIs(t, err, boom)
}

func TestRegistryReplace(t *testing.T) {
	t.Parallel()

	r := loaders.NewRegistry()
	_, ok := r.Lookup(codec.WAV)
	assert.False(t, ok)

	var first, second atomic.Int32
	r.Register(codec.WAV, byteDecoder(&first))
	r.Register(codec.WAV, byteDecoder(&second))

	fs := mapfs.New(map[string]string{"a.wav": "ab"})
	_, err := r.Decode(fs, codec.WAV, "a.wav")
	require.NoError(t, err)
	assert.Zero(t, first.Load())
	assert.EqualValues(t, 1, second.Load())
}

func TestCacheRetainsDecodedSamples(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := loaders.NewRegistry()
	r.Register(codec.Raw, byteDecoder(&calls))
	fs := mapfs.New(map[string]string{"a.raw": "abc"})
	c := loaders.NewCache(r, fs, time.Minute)

	first, err := c.Load(codec.Raw, "a.raw")
	require.NoError(t, err)
	second, err := c.Load(codec.Raw, "a.raw")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Zero(t, c.Len())
	_, err = c.Load(codec.Raw, "a.raw")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := loaders.NewRegistry()
	r.Register(codec.Raw, byteDecoder(&calls))
	fs := mapfs.New(map[string]string{"a.raw": "abc"})
	c := loaders.NewCache(r, fs, 0)

	for i := 0; i < 3; i++ {
		_, err := c.Load(codec.Raw, "a.raw")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, c.Len())
	c.Flush()
}

func TestCacheDoesNotRetainFailures(t *testing.T) {
	t.Parallel()

	r := loaders.NewRegistry()
	c := loaders.NewCache(r, mapfs.New(map[string]string{"a.ogg": "x"}), time.Minute)

	_, err := c.Load(codec.OGG, "a.ogg")
	require.ErrorIs(t, err, loaders.ErrUnsupportedFormat)
	assert.Zero(t, c.Len())
}

func TestCacheConcurrentLoads(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := loaders.NewRegistry()
	r.Register(codec.Raw, byteDecoder(&calls))
	c := loaders.NewCache(r, mapfs.New(map[string]string{"a.raw": "abc"}), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.Load(codec.Raw, "a.raw")
			assert.NoError(t, err)
			assert.Len(t, s.Data, 3)
		}()
	}
	wg.Wait()

	// singleflight collapses overlapping loads, the cache the later ones
	assert.LessOrEqual(t, calls.Load(), int32(16))
	assert.Equal(t, 1, c.Len())
}
