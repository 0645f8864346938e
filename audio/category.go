package audio

// Category selects which volume multiplier and enable flag apply to a voice.
type Category int

const (
	Effect Category = iota
	Music
)

func (c Category) String() string {
	switch c {
	case Effect:
		return "sfx"
	case Music:
		return "music"
	}
	return "unknown"
}
