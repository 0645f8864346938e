// Package raw decodes headerless signed 16-bit little endian PCM.
package raw

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/Lundis/go-voicepool/loaders"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
)

var ErrEmpty = errors.New("raw: no complete frames")

// Decoder interprets its input as interleaved int16 samples. Zero fields
// fall back to DefaultSampleRate and DefaultChannels. A trailing partial
// frame is dropped.
type Decoder struct {
	SampleRate int
	Channels   int
}

func (d Decoder) Decode(r io.Reader) (*loaders.Samples, error) {
	sampleRate, channels := d.SampleRate, d.Channels
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	if channels == 0 {
		channels = DefaultChannels
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	frame := 2 * channels
	buf = buf[:len(buf)-len(buf)%frame]
	if len(buf) == 0 {
		return nil, ErrEmpty
	}

	data := make([]float32, len(buf)/2)
	for i := range data {
		v := int16(binary.LittleEndian.Uint16(buf[2*i:]))
		if v < 0 {
			data[i] = float32(v) / (1 << 15)
		} else {
			data[i] = float32(v) / ((1 << 15) - 1)
		}
	}
	return &loaders.Samples{Data: data, SampleRate: sampleRate, Channels: channels}, nil
}
