package audio

import (
	"github.com/Lundis/go-voicepool/backend"
)

type admissionKind int

const (
	admitFree admissionKind = iota
	admitReclaimed
	admitEvicted
)

func (k admissionKind) String() string {
	switch k {
	case admitFree:
		return "free"
	case admitReclaimed:
		return "reclaimed"
	case admitEvicted:
		return "evicted"
	}
	return "unknown"
}

// admission is the outcome of choose. previous is the voice that held the
// slot before, for reclaimed and evicted slots.
type admission struct {
	slot     int
	kind     admissionKind
	previous VoiceInfo
}

// pool is a fixed set of voices, one per backend source. It is not safe for
// concurrent use; the engine serializes access.
type pool struct {
	backend backend.Backend
	voices  []voice
}

func newPool(b backend.Backend, sources []backend.Source) *pool {
	p := &pool{backend: b, voices: make([]voice, len(sources))}
	for i, src := range sources {
		p.voices[i] = voice{slot: i, source: src}
	}
	return p
}

func (p *pool) sources() []backend.Source {
	out := make([]backend.Source, len(p.voices))
	for i := range p.voices {
		out[i] = p.voices[i].source
	}
	return out
}

// choose picks a slot for a new voice without changing the pool. Rules are
// tried in order: a free slot, a slot whose source already finished, then a
// victim chosen by policy.
func (p *pool) choose(priority int, policy EvictionPolicy) (admission, error) {
	for i := range p.voices {
		if p.voices[i].state == Free {
			return admission{slot: i, kind: admitFree}, nil
		}
	}

	for i := range p.voices {
		v := &p.voices[i]
		if v.occupied() && p.backend.State(v.source) == backend.Stopped {
			return admission{slot: i, kind: admitReclaimed, previous: v.info()}, nil
		}
	}

	occupied := make([]VoiceInfo, 0, len(p.voices))
	for i := range p.voices {
		if p.voices[i].occupied() {
			occupied = append(occupied, p.voices[i].info())
		}
	}
	slot := policy.Victim(occupied, priority)
	if slot < 0 || slot >= len(p.voices) || !p.voices[slot].occupied() {
		return admission{}, ErrNoVoiceAvailable
	}
	return admission{slot: slot, kind: admitEvicted, previous: p.voices[slot].info()}, nil
}

// commit frees the slot chosen by choose.
func (p *pool) commit(a admission) {
	if a.kind != admitFree {
		p.release(a.slot)
	}
}

// release stops the voice in slot and returns it to Free. It reports
// whether the slot was occupied.
func (p *pool) release(slot int) bool {
	v := &p.voices[slot]
	if v.state == Free {
		return false
	}
	p.backend.Stop(v.source)
	p.backend.Detach(v.source)
	*v = voice{slot: v.slot, source: v.source}
	return true
}

// find returns the slot holding id, or -1.
func (p *pool) find(id PlaybackID) int {
	if id == 0 {
		return -1
	}
	for i := range p.voices {
		if p.voices[i].id == id && p.voices[i].occupied() {
			return i
		}
	}
	return -1
}

func (p *pool) active() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].occupied() {
			n++
		}
	}
	return n
}

// finished returns the slots of non-looping voices whose source stopped on
// its own, in slot order.
func (p *pool) finished() []int {
	var out []int
	for i := range p.voices {
		v := &p.voices[i]
		if v.state == Playing && p.backend.State(v.source) == backend.Stopped {
			out = append(out, i)
		}
	}
	return out
}

func (p *pool) snapshot() []VoiceInfo {
	out := make([]VoiceInfo, len(p.voices))
	for i := range p.voices {
		v := &p.voices[i]
		out[i] = v.info()
		if v.state == Playing && p.backend.State(v.source) == backend.Stopped {
			out[i].State = Stopped
		}
	}
	return out
}
