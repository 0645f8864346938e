package raw_test

import (
	"bytes"
	"testing"

	"github.com/Lundis/go-voicepool/loaders/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s, err := raw.Decoder{}.Decode(bytes.NewReader([]byte{0xff, 0x7f, 0x00, 0x80}))
	require.NoError(t, err)
	assert.Equal(t, raw.DefaultSampleRate, s.SampleRate)
	assert.Equal(t, raw.DefaultChannels, s.Channels)
	assert.Equal(t, []float32{1, -1}, s.Data)
}

func TestDropsPartialFrame(t *testing.T) {
	s, err := raw.Decoder{SampleRate: 8000, Channels: 1}.Decode(bytes.NewReader([]byte{0, 0, 0, 0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Frames())
	assert.Equal(t, 8000, s.SampleRate)
}

func TestEmpty(t *testing.T) {
	_, err := raw.Decoder{}.Decode(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorIs(t, err, raw.ErrEmpty)
}
