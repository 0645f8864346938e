package sfx

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Lundis/go-voicepool/audio"
)

var (
	ErrNotLoaded = errors.New("sfx: not loaded")
	ErrThrottled = errors.New("sfx: throttled")
)

// Player starts sound effect voices. *audio.Engine implements it.
type Player interface {
	PlaySound(name string, volume float32, looping bool, priority int) (audio.PlaybackID, error)
}

type Sfx struct {
	Id           Id            `json:"id" yaml:"id"`
	Volume       float32       `json:"volume" yaml:"volume"`
	Priority     int           `json:"priority" yaml:"priority"`
	Looping      bool          `json:"looping" yaml:"looping"`
	ThrottlingMs int           `json:"throttlingMs" yaml:"throttlingMs"`
	Variations   []*SfxVariant `json:"variations" yaml:"variations"`
	DebugMode    bool          `json:"debugMode" yaml:"debugMode"`
	lastPlayed   time.Time
}

type SfxVariant struct {
	Path         string  `json:"path" yaml:"path"`
	Probability  float64 `json:"probability" yaml:"probability"`
	Volume       float32 `json:"volume" yaml:"volume"`
	ThrottlingMs int     `json:"throttlingMs" yaml:"throttlingMs"`
	lastPlayed   time.Time
}

// Library holds the sound effects of one registry and plays them on a Player.
// Variation paths are passed to the player unchanged, so they must be
// relative to the player's asset root.
type Library struct {
	player Player
	logger *slog.Logger
	now    func() time.Time
	random func() float64

	lock    sync.RWMutex
	effects map[Id]*Sfx
	// playLock guards throttling state
	playLock sync.Mutex
}

func NewLibrary(player Player, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		player:  player,
		logger:  logger.With("module", "sfx"),
		now:     time.Now,
		random:  rand.Float64,
		effects: map[Id]*Sfx{},
	}
}

// Play picks a variation of id that is not throttled and plays it.
func (l *Library) Play(id Id) (audio.PlaybackID, error) {
	l.lock.RLock()
	e, ok := l.effects[id]
	l.lock.RUnlock()
	if !ok {
		l.logger.Warn("sound effect not loaded", "id", id)
		return 0, fmt.Errorf("%w: %s", ErrNotLoaded, id)
	}

	l.playLock.Lock()
	defer l.playLock.Unlock()
	v := e.pick(l.now(), l.random())
	if v == nil {
		return 0, fmt.Errorf("%w: %s", ErrThrottled, id)
	}
	playbackID, err := l.player.PlaySound(v.Path, e.Volume*v.Volume, e.Looping, e.Priority)
	if err != nil {
		return 0, fmt.Errorf("sfx %s: %w", id, err)
	}
	now := l.now()
	e.lastPlayed, v.lastPlayed = now, now
	if e.DebugMode {
		l.logger.Info("playing sound effect", "id", id, "variation", v.Path, "playback", playbackID)
	}
	return playbackID, nil
}

// pick chooses a variation among the unthrottled ones, weighted by
// Probability. random must be in [0, 1).
func (e *Sfx) pick(now time.Time, random float64) *SfxVariant {
	if len(e.Variations) == 0 {
		return nil
	}
	if now.Sub(e.lastPlayed) <= time.Duration(e.ThrottlingMs)*time.Millisecond {
		return nil
	}

	unThrottled := make([]*SfxVariant, 0, len(e.Variations))
	probabilitySum := 0.0
	for _, v := range e.Variations {
		if now.Sub(v.lastPlayed) > time.Duration(v.ThrottlingMs)*time.Millisecond {
			unThrottled = append(unThrottled, v)
			probabilitySum += v.Probability
		}
	}
	if len(unThrottled) == 0 {
		return nil
	}

	r := random * probabilitySum
	for _, v := range unThrottled {
		if r <= v.Probability+0.001 {
			return v
		}
		r -= v.Probability
	}
	return unThrottled[len(unThrottled)-1]
}

// Ids returns the loaded effect ids.
func (l *Library) Ids() []Id {
	l.lock.RLock()
	defer l.lock.RUnlock()
	ids := make([]Id, 0, len(l.effects))
	for id := range l.effects {
		ids = append(ids, id)
	}
	return ids
}
