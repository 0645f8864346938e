// Package oggvorbis decodes Ogg Vorbis streams.
package oggvorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Lundis/go-voicepool/loaders"
)

var (
	ErrChannelCount = errors.New("oggvorbis: unexpected number of channels")
	ErrSampleRate   = errors.New("oggvorbis: unexpected sample rate")
)

// Decoder decodes a whole Ogg Vorbis stream into memory.
//
// Non-zero SampleRate or Channels make the decoder reject streams that differ.
type Decoder struct {
	SampleRate int
	Channels   int
}

func (d Decoder) Decode(r io.Reader) (*loaders.Samples, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if d.Channels != 0 && format.Channels != d.Channels {
		return nil, fmt.Errorf("%w: must be %d but was %d", ErrChannelCount, d.Channels, format.Channels)
	}
	if d.SampleRate != 0 && format.SampleRate != d.SampleRate {
		return nil, fmt.Errorf("%w: must be %d but was %d", ErrSampleRate, d.SampleRate, format.SampleRate)
	}
	return &loaders.Samples{
		Data:       data,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}, nil
}
