package wav_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/Lundis/go-voicepool/loaders/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunk struct {
	id   string
	body []byte
}

// buildWav assembles a RIFF/WAVE file from chunks in the given order.
func buildWav(chunks ...chunk) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		binary.Write(&body, binary.LittleEndian, uint32(len(c.body)))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}
	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func fmtChunk(format uint16, channels, sampleRate, bits int) chunk {
	var b bytes.Buffer
	blockAlign := channels * bits / 8
	binary.Write(&b, binary.LittleEndian, format)
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&b, binary.LittleEndian, uint16(bits))
	return chunk{"fmt ", b.Bytes()}
}

func pcm16(samples ...int16) chunk {
	var b bytes.Buffer
	for _, s := range samples {
		binary.Write(&b, binary.LittleEndian, s)
	}
	return chunk{"data", b.Bytes()}
}

func TestLoadStereo(t *testing.T) {
	data := buildWav(fmtChunk(1, 2, 44100, 16), pcm16(0, 16384, -16384, -32768))

	s, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Channels)
	assert.Equal(t, 44100, s.SampleRate)
	assert.Equal(t, []float32{0, 0.5, -0.5, -1}, s.Data)
}

func TestLoadMono(t *testing.T) {
	data := buildWav(fmtChunk(1, 1, 22050, 16), pcm16(100, 200, 300))

	s, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Channels)
	assert.Equal(t, 3, s.Frames())

	_, err = wav.Decoder{Channels: 2}.Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, wav.ErrChannelCount, "should not load mono tracks when stereo is required")
}

func TestLoad8khz(t *testing.T) {
	data := buildWav(fmtChunk(1, 2, 8000, 16), pcm16(1, 2))

	_, err := wav.Decoder{SampleRate: 44100}.Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, wav.ErrSampleRate)
}

func TestLoad8bit(t *testing.T) {
	data := buildWav(fmtChunk(1, 1, 8000, 8), chunk{"data", []byte{128, 255, 0, 192}})

	s, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, s.Data, 4)
	assert.InDelta(t, 0, s.Data[0], 1e-6)
	assert.InDelta(t, 127.0/128, s.Data[1], 1e-6)
	assert.InDelta(t, -1, s.Data[2], 1e-6)
	assert.InDelta(t, 0.5, s.Data[3], 1e-6)
}

func TestChunksBeforeFormat(t *testing.T) {
	junk := chunk{"JUNK", make([]byte, 16)}
	data := buildWav(junk, fmtChunk(1, 2, 44100, 16), pcm16(32767, -32767))

	s, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, s.Data, 2)
	assert.InDelta(t, 1, s.Data[0], 1e-4)
	assert.InDelta(t, -1, s.Data[1], 1e-4)
}

func TestRejectsNonPCM(t *testing.T) {
	data := buildWav(fmtChunk(3, 1, 44100, 32), chunk{"data", make([]byte, 8)})

	_, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, wav.ErrNotLinearPCM)
}

func TestRejectsGarbage(t *testing.T) {
	_, err := wav.Decoder{}.Decode(bytes.NewReader([]byte("definitely not a riff file at all, no sir")))
	require.Error(t, err)
}

func TestDecodeFromPlainReader(t *testing.T) {
	data := buildWav(fmtChunk(1, 1, 8000, 16), pcm16(0, 0))

	s, err := wav.Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Frames())
}
