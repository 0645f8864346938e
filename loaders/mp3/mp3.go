// Package mp3 decodes MPEG-1/2 Layer III streams.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/Lundis/go-voicepool/loaders"
)

// go-mp3 always produces 16-bit little endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
)

// Decoder decodes a whole MP3 stream into memory.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (*loaders.Samples, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	frame := channels * bytesPerSample
	raw = raw[:len(raw)-len(raw)%frame]

	data := make([]float32, len(raw)/bytesPerSample)
	for i := range data {
		data[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / (1 << 15)
	}
	return &loaders.Samples{
		Data:       data,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
	}, nil
}
