// Copyright 2016 Hajime Hoshi
// Copyright 2025 Lundis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wav provides WAV (RIFF) decoder.
package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/Lundis/go-voicepool/loaders"
)

var (
	ErrNotWavFile    = errors.New("wav: invalid header: 'RIFF'/'WAVE' not found")
	ErrNotLinearPCM  = errors.New("wav: format must be linear PCM")
	ErrBitDepth      = errors.New("wav: unsupported bits per sample")
	ErrChannelCount  = errors.New("wav: unexpected number of channels")
	ErrSampleRate    = errors.New("wav: unexpected sample rate")
	errEmptyDataPart = errors.New("wav: no samples in data chunk")
)

const formatPCM = 1

// Decoder decodes linear PCM WAV files of 8, 16, 24 or 32 bits.
// Chunks may appear in any order.
//
// Non-zero SampleRate or Channels make the decoder reject files that differ.
type Decoder struct {
	SampleRate int
	Channels   int
}

func (d Decoder) Decode(r io.Reader) (*loaders.Samples, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != formatPCM {
		return nil, ErrNotLinearPCM
	}
	channels := int(dec.NumChans)
	if d.Channels != 0 && channels != d.Channels {
		return nil, fmt.Errorf("%w: must be %d but was %d", ErrChannelCount, d.Channels, channels)
	}
	sampleRate := int(dec.SampleRate)
	if d.SampleRate != 0 && sampleRate != d.SampleRate {
		return nil, fmt.Errorf("%w: must be %d but was %d", ErrSampleRate, d.SampleRate, sampleRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: reading data chunk: %w", err)
	}
	if len(buf.Data) == 0 {
		return nil, errEmptyDataPart
	}
	data, err := normalize(buf, int(dec.BitDepth))
	if err != nil {
		return nil, err
	}
	return &loaders.Samples{
		Data:       data,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}

// normalize scales integer PCM into [-1, 1]. 8-bit WAV data is unsigned.
func normalize(buf *goaudio.IntBuffer, bitDepth int) ([]float32, error) {
	var scale float32
	offset := 0
	switch bitDepth {
	case 8:
		scale, offset = 1<<7, 1<<7
	case 16:
		scale = 1 << 15
	case 24:
		scale = 1 << 23
	case 32:
		scale = 1 << 31
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	f32 := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		f32[i] = float32(v-offset) / scale
	}
	return f32, nil
}
