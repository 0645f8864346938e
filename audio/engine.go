// Package audio is a bounded voice pool over a backend.Backend.
//
// An Engine owns a fixed number of voices (backend sources) and a ring of
// backend buffers. Play decodes a file, uploads it into the next buffer and
// admits it into a voice, stealing one by priority when the pool is full.
// A reaper goroutine notices voices that finished on their own, returns them
// to the pool and notifies OnComplete listeners.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/tools/godoc/vfs"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/codec"
	"github.com/Lundis/go-voicepool/loaders"
	"github.com/Lundis/go-voicepool/loaders/mp3"
	"github.com/Lundis/go-voicepool/loaders/oggvorbis"
	"github.com/Lundis/go-voicepool/loaders/raw"
	"github.com/Lundis/go-voicepool/loaders/wav"
)

const (
	DefaultVoices  = 32
	DefaultBuffers = 64
	// MusicPriority is the priority of every PlayMusic voice.
	MusicPriority = 100
)

// State is the lifecycle state of an Engine.
type State int

const (
	Uninitialized State = iota
	Initialized
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case ShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

type Options struct {
	// Voices is the pool size. Zero means DefaultVoices.
	Voices int
	// Buffers is the number of backend buffers in the ring. Zero means
	// DefaultBuffers.
	Buffers int
	// ReapInterval is the reaper period. Zero means DefaultReapInterval; a
	// negative value starts no reaper and leaves Tick to the caller.
	ReapInterval time.Duration
	// Policy decides evictions. Nil means StealLowest.
	Policy EvictionPolicy
	// StaticGain keeps the gain a voice was admitted with when volumes
	// change. By default the volume setters retune active voices.
	StaticGain bool

	// Assets is where sound names are opened. Nil means the working directory.
	Assets vfs.Opener
	// Decoders maps codecs to decoders. Nil means DefaultDecoders().
	Decoders *loaders.Registry
	// CacheTTL keeps decoded samples after their last use. Zero disables
	// the cache.
	CacheTTL time.Duration

	// Clock stamps voice start times. Nil means time.Now.
	Clock   func() time.Time
	Logger  *slog.Logger
	Metrics *Metrics
}

func (o Options) withDefaults() Options {
	if o.Voices <= 0 {
		o.Voices = DefaultVoices
	}
	if o.Buffers <= 0 {
		o.Buffers = DefaultBuffers
	}
	if o.ReapInterval == 0 {
		o.ReapInterval = DefaultReapInterval
	}
	if o.Policy == nil {
		o.Policy = StealLowest{}
	}
	if o.Assets == nil {
		o.Assets = vfs.OS(".")
	}
	if o.Decoders == nil {
		o.Decoders = DefaultDecoders()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// DefaultDecoders returns a registry with every bundled decoder.
func DefaultDecoders() *loaders.Registry {
	r := loaders.NewRegistry()
	r.Register(codec.WAV, wav.Decoder{})
	r.Register(codec.OGG, oggvorbis.Decoder{})
	r.Register(codec.MP3, mp3.Decoder{})
	r.Register(codec.Raw, raw.Decoder{})
	return r
}

// Request describes one playback.
type Request struct {
	Name     string
	Volume   float32
	Looping  bool
	Priority int
	Category Category
	// Pitch is a playback rate multiplier. Zero means 1.
	Pitch float32
}

type listener struct {
	id int
	fn func(PlaybackID)
}

// Engine is safe for concurrent use.
type Engine struct {
	backend backend.Backend
	opts    Options
	logger  *slog.Logger
	cache   *loaders.Cache
	metrics *Metrics

	mu       sync.Mutex
	state    State
	settings Settings
	pool     *pool
	ring     *bufferRing
	lastID   PlaybackID
	// pending holds ids of voices that finished and were reclaimed during
	// admission; the next tick announces them.
	pending []PlaybackID
	reaper  *reaper

	listenersMu  sync.Mutex
	listeners    []listener
	nextListener int
}

func New(b backend.Backend, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		backend:  b,
		opts:     opts,
		logger:   opts.Logger.With("module", "audio"),
		cache:    loaders.NewCache(opts.Decoders, opts.Assets, opts.CacheTTL),
		metrics:  opts.Metrics,
		settings: DefaultSettings(),
	}
}

// Init opens the backend, allocates voices and buffers, resets the mixer
// settings and starts the reaper. On failure nothing is left open.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	if err := e.backend.Open(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, e.backend.Name(), err)
	}
	sources, err := e.backend.GenSources(e.opts.Voices)
	if err != nil {
		_ = e.backend.Close()
		return fmt.Errorf("%w: %s: creating sources: %w", ErrBackendUnavailable, e.backend.Name(), err)
	}
	buffers, err := e.backend.GenBuffers(e.opts.Buffers)
	if err != nil {
		e.backend.DeleteSources(sources)
		_ = e.backend.Close()
		return fmt.Errorf("%w: %s: creating buffers: %w", ErrBackendUnavailable, e.backend.Name(), err)
	}
	e.backend.SetListenerGain(1)

	e.pool = newPool(e.backend, sources)
	e.ring = newBufferRing(buffers)
	e.settings = DefaultSettings()
	e.pending = nil
	e.state = Initialized
	if e.opts.ReapInterval > 0 {
		e.reaper = startReaper(e.opts.ReapInterval, e.Tick)
	}
	e.metrics.setActive(0)

	e.logger.Info("audio engine initialized",
		"backend", e.backend.Name(),
		"voices", len(sources),
		"buffers", len(buffers),
		"policy", e.opts.Policy.Name())
	return nil
}

// Shutdown stops the reaper and every voice and closes the backend. It does
// nothing on an uninitialized engine. It must not be called from an
// OnComplete listener.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.state != Initialized {
		e.mu.Unlock()
		return nil
	}
	e.state = ShuttingDown
	r := e.reaper
	e.reaper = nil
	e.mu.Unlock()

	if r != nil {
		r.stop()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.pool.voices {
		e.pool.release(i)
	}
	e.backend.DeleteSources(e.pool.sources())
	e.backend.DeleteBuffers(e.ring.buffers)
	err := e.backend.Close()

	e.pool, e.ring, e.pending = nil, nil, nil
	e.state = Uninitialized
	e.metrics.setActive(0)
	e.logger.Info("audio engine shut down", "backend", e.backend.Name())
	if err != nil {
		return fmt.Errorf("closing %s: %w", e.backend.Name(), err)
	}
	return nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PlaySound plays name as a sound effect.
func (e *Engine) PlaySound(name string, volume float32, looping bool, priority int) (PlaybackID, error) {
	return e.Play(Request{
		Name:     name,
		Volume:   volume,
		Looping:  looping,
		Priority: priority,
		Category: Effect,
	})
}

// PlayMusic plays name in the music category at MusicPriority.
func (e *Engine) PlayMusic(name string, volume float32, looping bool) (PlaybackID, error) {
	return e.Play(Request{
		Name:     name,
		Volume:   volume,
		Looping:  looping,
		Priority: MusicPriority,
		Category: Music,
	})
}

// Play decodes req.Name and starts it on a voice.
func (e *Engine) Play(req Request) (PlaybackID, error) {
	id, err := e.play(req)
	result := playResult(err)
	e.metrics.recordPlay(req.Category, result)
	switch {
	case err == nil:
	case errors.Is(err, ErrDisabled):
		e.logger.Debug("play skipped", "name", req.Name, "category", req.Category, "error", err)
	default:
		e.logger.Warn("play failed", "name", req.Name, "category", req.Category, "result", result, "error", err)
	}
	return id, err
}

func (e *Engine) allows(c Category) error {
	if e.state != Initialized {
		return ErrNotInitialized
	}
	if !e.settings.Allows(c) {
		return fmt.Errorf("%w: %s", ErrDisabled, c)
	}
	return nil
}

func (e *Engine) play(req Request) (PlaybackID, error) {
	if req.Name == "" {
		return 0, ErrInvalidName
	}
	e.mu.Lock()
	err := e.allows(req.Category)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}

	tag := codec.Detect(req.Name)
	start := time.Now()
	samples, err := e.cache.Load(tag, req.Name)
	e.metrics.observeDecode(tag.String(), time.Since(start).Seconds())
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// settings may have changed while decoding
	if err := e.allows(req.Category); err != nil {
		return 0, err
	}

	adm, err := e.pool.choose(req.Priority, e.opts.Policy)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", req.Name, err)
	}

	buf := e.ring.take()
	// a buffer can only be refilled once its source lets go of it
	early := adm.kind != admitFree && e.pool.voices[adm.slot].buffer == buf
	if early {
		e.admit(adm, req.Priority)
	}
	if err := e.backend.BufferData(buf, samples); err != nil {
		return 0, fmt.Errorf("%s: %w: %w", req.Name, ErrDecodeFailed, err)
	}
	if !early {
		e.admit(adm, req.Priority)
	}

	pitch := req.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	state := Playing
	if req.Looping {
		state = Looping
	}
	e.lastID++
	v := &e.pool.voices[adm.slot]
	v.id = e.lastID
	v.buffer = buf
	v.state = state
	v.category = req.Category
	v.priority = req.Priority
	v.volume = clamp(req.Volume)
	v.pitch = pitch
	v.startedAt = e.opts.Clock()
	v.name = req.Name

	gain := e.settings.EffectiveGain(v.volume, v.category)
	e.backend.SetGain(v.source, gain)
	e.backend.SetPitch(v.source, pitch)
	e.backend.SetLooping(v.source, req.Looping)
	e.backend.Attach(v.source, buf)
	e.backend.Play(v.source)
	e.metrics.setActive(e.pool.active())

	e.logger.Debug("playing",
		"name", req.Name,
		"id", v.id,
		"slot", adm.slot,
		"admission", adm.kind,
		"gain", gain)
	return v.id, nil
}

// admit frees the slot chosen for a new voice and accounts for the voice
// that held it.
func (e *Engine) admit(adm admission, priority int) {
	e.pool.commit(adm)
	switch adm.kind {
	case admitReclaimed:
		e.metrics.recordReclaimed("admission", 1)
		if adm.previous.State == Playing {
			e.pending = append(e.pending, adm.previous.ID)
		}
	case admitEvicted:
		e.metrics.recordEviction(e.opts.Policy.Name())
		e.logger.Debug("voice stolen",
			"slot", adm.slot,
			"victim", adm.previous.ID,
			"victim_name", adm.previous.Name,
			"victim_priority", adm.previous.Priority,
			"priority", priority)
	}
}

func playResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, ErrDecodeFailed):
		return "decode_failed"
	case errors.Is(err, ErrNoVoiceAvailable):
		return "no_voice"
	}
	return "error"
}

// Stop ends the playback id. Unknown or finished ids are ignored.
func (e *Engine) Stop(id PlaybackID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	if slot := e.pool.find(id); slot >= 0 {
		e.pool.release(slot)
		e.metrics.recordReclaimed("stop", 1)
		e.metrics.setActive(e.pool.active())
		e.logger.Debug("stopped", "id", id, "slot", slot)
	}
}

// StopAll ends every playback.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAll()
}

func (e *Engine) stopAll() {
	if e.state != Initialized {
		return
	}
	n := 0
	for i := range e.pool.voices {
		if e.pool.release(i) {
			n++
		}
	}
	e.metrics.recordReclaimed("stop", n)
	e.metrics.setActive(0)
}

// MarkComplete releases the voice of id without notifying listeners, for
// callers that learn about completion elsewhere.
func (e *Engine) MarkComplete(id PlaybackID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return
	}
	if slot := e.pool.find(id); slot >= 0 {
		e.pool.release(slot)
		e.metrics.recordReclaimed("external", 1)
		e.metrics.setActive(e.pool.active())
	}
}

// IsPlaying reports whether id holds a voice whose source is playing.
func (e *Engine) IsPlaying(id PlaybackID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return false
	}
	slot := e.pool.find(id)
	return slot >= 0 && e.backend.State(e.pool.voices[slot].source) == backend.Playing
}

// ActiveVoiceCount returns the number of playing and looping voices.
func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return 0
	}
	return e.pool.active()
}

// Voices returns a snapshot of every slot.
func (e *Engine) Voices() []VoiceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Initialized {
		return nil
	}
	return e.pool.snapshot()
}

// OnComplete registers fn to be called with the id of every playback that
// ends on its own. Listeners run on the reaper goroutine, or inside Tick.
// The returned function removes fn.
func (e *Engine) OnComplete(fn func(PlaybackID)) (unsubscribe func()) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	return func() {
		e.listenersMu.Lock()
		defer e.listenersMu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Tick reclaims finished non-looping voices and notifies listeners. The
// reaper calls it periodically; it is exported for engines created with a
// negative ReapInterval.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.state != Initialized {
		e.mu.Unlock()
		return
	}
	done := e.pending
	e.pending = nil
	reaped := 0
	for _, slot := range e.pool.finished() {
		done = append(done, e.pool.voices[slot].id)
		e.pool.release(slot)
		reaped++
	}
	if reaped > 0 {
		e.metrics.recordReclaimed("reaper", reaped)
		e.metrics.setActive(e.pool.active())
	}
	e.mu.Unlock()

	e.notify(done)
}

func (e *Engine) notify(ids []PlaybackID) {
	if len(ids) == 0 {
		return
	}
	e.listenersMu.Lock()
	listeners := make([]listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.listenersMu.Unlock()

	for _, id := range ids {
		e.logger.Debug("playback complete", "id", id)
		for _, l := range listeners {
			l.fn(id)
		}
	}
	e.metrics.recordCompletions(len(ids))
}
