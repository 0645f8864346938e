package audio

// DebugInfo logs the engine state and one line per occupied voice.
func (e *Engine) DebugInfo() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Initialized {
		e.logger.Warn("audio engine not initialized")
		return
	}
	e.logger.Info("audio debug info",
		"backend", e.backend.Name(),
		"policy", e.opts.Policy.Name(),
		"static_gain", e.opts.StaticGain,
		"master", e.settings.Master,
		"music", e.settings.Music,
		"sfx", e.settings.Sfx,
		"enabled", e.settings.Enabled,
		"music_enabled", e.settings.MusicEnabled,
		"sfx_enabled", e.settings.SfxEnabled,
		"active", e.pool.active(),
		"voices", len(e.pool.voices),
		"next_id", e.lastID+1,
		"cached", e.cache.Len())
	for i := range e.pool.voices {
		v := &e.pool.voices[i]
		if !v.occupied() {
			continue
		}
		e.logger.Info("voice",
			"slot", v.slot,
			"id", v.id,
			"state", e.backend.State(v.source),
			"category", v.category,
			"priority", v.priority,
			"volume", v.volume,
			"buffer", v.buffer,
			"name", v.name)
	}
}
