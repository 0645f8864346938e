// Copyright 2021 The Oto Authors
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

package soft

import (
	"math"
	"sync"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/loaders"
)

// outputChannels is fixed: every device plays interleaved stereo float32.
const outputChannels = 2

type source struct {
	buffer   backend.Buffer
	attached bool
	gain     float32
	pitch    float32
	looping  bool
	state    backend.SourceState
	// pos is the read position in frames of the attached buffer.
	pos float64
}

// mixer holds sources and buffers and sums the playing sources into an
// output block on demand.
type mixer struct {
	sampleRate int

	m            sync.Mutex
	nextHandle   uint32
	sources      map[backend.Source]*source
	buffers      map[backend.Buffer]*loaders.Samples
	listenerGain float32
}

func newMixer(sampleRate int) *mixer {
	return &mixer{
		sampleRate:   sampleRate,
		sources:      map[backend.Source]*source{},
		buffers:      map[backend.Buffer]*loaders.Samples{},
		listenerGain: 1,
	}
}

func (m *mixer) reset() {
	m.m.Lock()
	defer m.m.Unlock()
	clear(m.sources)
	clear(m.buffers)
}

func (m *mixer) genSources(n int) []backend.Source {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]backend.Source, n)
	for i := range out {
		m.nextHandle++
		out[i] = backend.Source(m.nextHandle)
		m.sources[out[i]] = &source{gain: 1, pitch: 1, state: backend.Initial}
	}
	return out
}

func (m *mixer) genBuffers(n int) []backend.Buffer {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]backend.Buffer, n)
	for i := range out {
		m.nextHandle++
		out[i] = backend.Buffer(m.nextHandle)
		m.buffers[out[i]] = nil
	}
	return out
}

func (m *mixer) deleteSources(sources []backend.Source) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, s := range sources {
		delete(m.sources, s)
	}
}

func (m *mixer) deleteBuffers(buffers []backend.Buffer) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, b := range buffers {
		delete(m.buffers, b)
	}
}

// bufferData replaces the data of buf. Sources attached to it continue from
// their current position in the new data.
func (m *mixer) bufferData(buf backend.Buffer, samples *loaders.Samples) bool {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.buffers[buf]; !ok {
		return false
	}
	m.buffers[buf] = samples
	return true
}

func (m *mixer) with(src backend.Source, fn func(s *source)) {
	m.m.Lock()
	defer m.m.Unlock()
	if s, ok := m.sources[src]; ok {
		fn(s)
	}
}

func (m *mixer) state(src backend.Source) backend.SourceState {
	state := backend.Initial
	m.with(src, func(s *source) { state = s.state })
	return state
}

func (m *mixer) setListenerGain(gain float32) {
	m.m.Lock()
	m.listenerGain = gain
	m.m.Unlock()
}

// ReadFloat32s fills buf with the mix of all playing sources as interleaved
// stereo float32 values.
func (m *mixer) ReadFloat32s(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}

	m.m.Lock()
	defer m.m.Unlock()

	for _, s := range m.sources {
		if s.state != backend.Playing || !s.attached {
			continue
		}
		data := m.buffers[s.buffer]
		if data == nil || data.Frames() == 0 {
			s.state = backend.Stopped
			continue
		}
		s.readBufferAndAdd(buf, data, m.sampleRate, s.gain*m.listenerGain)
	}
}

// readBufferAndAdd adds the source's next frames to buf. The read position
// advances by pitch times the ratio of buffer rate to output rate per output
// frame; there is no interpolation.
func (s *source) readBufferAndAdd(buf []float32, data *loaders.Samples, outRate int, gain float32) {
	frameCount := data.Frames()
	step := float64(s.pitch) * float64(data.SampleRate) / float64(outRate)
	if step <= 0 {
		return
	}

	for i := 0; i+1 < len(buf); i += outputChannels {
		if s.pos >= float64(frameCount) {
			if !s.looping {
				s.state = backend.Stopped
				s.pos = 0
				return
			}
			s.pos = math.Mod(s.pos, float64(frameCount))
		}
		l, r := frameAt(data, int(s.pos))
		buf[i] += l * gain
		buf[i+1] += r * gain
		s.pos += step
	}

	if !s.looping && s.pos >= float64(frameCount) {
		s.state = backend.Stopped
		s.pos = 0
	}
}

// frameAt returns the stereo frame f. Mono is duplicated to both sides and
// channels beyond the second are ignored.
func frameAt(data *loaders.Samples, f int) (l, r float32) {
	i := f * data.Channels
	if data.Channels == 1 {
		return data.Data[i], data.Data[i]
	}
	return data.Data[i], data.Data[i+1]
}
