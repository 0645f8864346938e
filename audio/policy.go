package audio

// EvictionPolicy picks the voice to steal when every slot is busy and none
// has finished.
type EvictionPolicy interface {
	Name() string
	// Victim returns the slot to evict for a request of the given priority,
	// or -1 to refuse. voices holds only occupied slots, in slot order.
	Victim(voices []VoiceInfo, priority int) int
}

// StealLowest evicts the lowest-priority voice even when it outranks the
// newcomer. Ties go to the lowest slot.
type StealLowest struct{}

func (StealLowest) Name() string { return "steal-lowest" }

func (StealLowest) Victim(voices []VoiceInfo, _ int) int {
	v, ok := lowest(voices)
	if !ok {
		return -1
	}
	return v.Slot
}

// StealLowerOnly evicts the lowest-priority voice only if its priority is
// strictly below the newcomer's.
type StealLowerOnly struct{}

func (StealLowerOnly) Name() string { return "steal-lower-only" }

func (StealLowerOnly) Victim(voices []VoiceInfo, priority int) int {
	v, ok := lowest(voices)
	if !ok || v.Priority >= priority {
		return -1
	}
	return v.Slot
}

func lowest(voices []VoiceInfo) (VoiceInfo, bool) {
	if len(voices) == 0 {
		return VoiceInfo{}, false
	}
	best := voices[0]
	for _, v := range voices[1:] {
		if v.Priority < best.Priority || (v.Priority == best.Priority && v.Slot < best.Slot) {
			best = v
		}
	}
	return best, true
}

// PolicyByName returns the policy registered under name.
func PolicyByName(name string) (EvictionPolicy, bool) {
	switch name {
	case "", StealLowest{}.Name():
		return StealLowest{}, true
	case StealLowerOnly{}.Name():
		return StealLowerOnly{}, true
	}
	return nil, false
}
