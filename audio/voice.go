package audio

import (
	"time"

	"github.com/Lundis/go-voicepool/backend"
)

// PlaybackID identifies one playback. Zero is never handed out.
type PlaybackID uint64

type VoiceState int

const (
	Free VoiceState = iota
	Playing
	Looping
	// Stopped is reported for a voice whose backend source finished but
	// which the reaper has not reclaimed yet.
	Stopped
)

func (s VoiceState) String() string {
	switch s {
	case Free:
		return "free"
	case Playing:
		return "playing"
	case Looping:
		return "looping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type voice struct {
	slot   int
	source backend.Source

	id        PlaybackID
	buffer    backend.Buffer
	state     VoiceState
	category  Category
	priority  int
	volume    float32
	pitch     float32
	startedAt time.Time
	name      string
}

func (v *voice) occupied() bool {
	return v.state == Playing || v.state == Looping
}

// VoiceInfo is a snapshot of one pool slot.
type VoiceInfo struct {
	Slot      int
	ID        PlaybackID
	State     VoiceState
	Category  Category
	Priority  int
	Volume    float32
	Pitch     float32
	StartedAt time.Time
	Name      string
}

func (v *voice) info() VoiceInfo {
	return VoiceInfo{
		Slot:      v.slot,
		ID:        v.id,
		State:     v.state,
		Category:  v.category,
		Priority:  v.priority,
		Volume:    v.volume,
		Pitch:     v.pitch,
		StartedAt: v.startedAt,
		Name:      v.name,
	}
}
