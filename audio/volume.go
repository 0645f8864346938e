package audio

// Volume and enable setters do nothing until Init; Init resets every level
// to DefaultSettings.

func (e *Engine) SetMasterVolume(v float32) {
	e.setVolume("master", func(s *Settings) { s.Master = clamp(v) }, nil)
}

func (e *Engine) SetMusicVolume(v float32) {
	music := Music
	e.setVolume("music", func(s *Settings) { s.Music = clamp(v) }, &music)
}

func (e *Engine) SetSfxVolume(v float32) {
	sfx := Effect
	e.setVolume("sfx", func(s *Settings) { s.Sfx = clamp(v) }, &sfx)
}

// setVolume applies set and, unless gains are static, re-applies the gain
// of active voices in only (all categories when nil).
func (e *Engine) setVolume(which string, set func(*Settings), only *Category) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	set(&e.settings)
	if !e.opts.StaticGain {
		e.retune(only)
	}
	e.logger.Info("volume set",
		"which", which,
		"master", e.settings.Master,
		"music", e.settings.Music,
		"sfx", e.settings.Sfx)
}

func (e *Engine) retune(only *Category) {
	for i := range e.pool.voices {
		v := &e.pool.voices[i]
		if !v.occupied() || (only != nil && v.category != *only) {
			continue
		}
		e.backend.SetGain(v.source, e.settings.EffectiveGain(v.volume, v.category))
	}
}

func (e *Engine) MasterVolume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Master
}

func (e *Engine) MusicVolume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Music
}

func (e *Engine) SfxVolume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Sfx
}

// Settings returns the current mixer settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Enable turns all audio on or off. Disabling stops every voice.
func (e *Engine) Enable(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	e.settings.Enabled = on
	if !on {
		e.stopAll()
	}
	e.logger.Info("audio enabled", "enabled", on)
}

// EnableMusic gates new music voices. Playing music is not stopped.
func (e *Engine) EnableMusic(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	e.settings.MusicEnabled = on
	e.logger.Info("music enabled", "enabled", on)
}

// EnableSfx gates new sound effect voices. Playing effects are not stopped.
func (e *Engine) EnableSfx(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	e.settings.SfxEnabled = on
	e.logger.Info("sfx enabled", "enabled", on)
}

func (e *Engine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Enabled
}

func (e *Engine) IsMusicEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.MusicEnabled
}

func (e *Engine) IsSfxEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.SfxEnabled
}
