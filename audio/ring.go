package audio

import "github.com/Lundis/go-voicepool/backend"

// bufferRing hands out backend buffers round-robin. It does not check
// whether a buffer is still attached to a live voice: with more concurrent
// voices than buffers, a refill can replace audio that is still playing.
type bufferRing struct {
	buffers []backend.Buffer
	next    int
}

func newBufferRing(buffers []backend.Buffer) *bufferRing {
	return &bufferRing{buffers: buffers}
}

func (r *bufferRing) take() backend.Buffer {
	b := r.buffers[r.next]
	r.next = (r.next + 1) % len(r.buffers)
	return b
}
