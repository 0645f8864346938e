package audio

// Settings are the mixer levels and enable flags of an engine.
type Settings struct {
	Master float32
	Music  float32
	Sfx    float32

	Enabled      bool
	MusicEnabled bool
	SfxEnabled   bool
}

func DefaultSettings() Settings {
	return Settings{
		Master:       1.0,
		Music:        0.7,
		Sfx:          0.8,
		Enabled:      true,
		MusicEnabled: true,
		SfxEnabled:   true,
	}
}

func clamp(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s Settings) categoryVolume(c Category) float32 {
	if c == Music {
		return s.Music
	}
	return s.Sfx
}

// EffectiveGain is the backend gain for a voice played at volume in c.
func (s Settings) EffectiveGain(volume float32, c Category) float32 {
	return clamp(volume) * s.Master * s.categoryVolume(c)
}

// Allows reports whether new voices of category c may start.
func (s Settings) Allows(c Category) bool {
	if !s.Enabled {
		return false
	}
	if c == Music {
		return s.MusicEnabled
	}
	return s.SfxEnabled
}
