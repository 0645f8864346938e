package playlist

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lundis/go-voicepool/audio"
)

var ErrNotLoaded = errors.New("playlist: not loaded")

// MusicPlayer plays music voices and reports their completion.
// *audio.Engine implements it.
type MusicPlayer interface {
	PlayMusic(name string, volume float32, looping bool) (audio.PlaybackID, error)
	Stop(id audio.PlaybackID)
	OnComplete(fn func(audio.PlaybackID)) (unsubscribe func())
}

type Id string

type PlayList struct {
	Id           Id       `json:"id" yaml:"id"`
	Tracks       []*Track `json:"tracks" yaml:"tracks"`
	currentTrack int
}

type Track struct {
	Path   string  `json:"path" yaml:"path"`
	Name   string  `json:"name" yaml:"name"`
	Author string  `json:"author" yaml:"author"`
	Volume float32 `json:"volume" yaml:"volume"`
}

// Library plays one playlist at a time. A playlist with a single track
// loops it; longer playlists move to the next track when the current one
// completes, wrapping around at the end.
type Library struct {
	player      MusicPlayer
	logger      *slog.Logger
	unsubscribe func()

	lock      sync.Mutex
	playLists map[Id]*PlayList
	current   *PlayList
	playing   audio.PlaybackID
}

func NewLibrary(player MusicPlayer, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Library{
		player:    player,
		logger:    logger.With("module", "playlist"),
		playLists: map[Id]*PlayList{},
	}
	l.unsubscribe = player.OnComplete(l.onComplete)
	return l
}

// Play starts playListId. Playing the playlist that is already playing does
// nothing; after Pause it resumes the current track from the start.
func (l *Library) Play(playListId Id) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.current != nil && l.current.Id == playListId && l.playing != 0 {
		return nil
	}
	pl, ok := l.playLists[playListId]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, playListId)
	}
	l.stop()
	if l.current != pl {
		pl.currentTrack = 0
	}
	l.current = pl
	return l.play()
}

// Pause stops the current track and keeps the position in the playlist.
func (l *Library) Pause() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stop()
}

// Close stops playback and detaches the library from the player.
func (l *Library) Close() {
	l.unsubscribe()
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stop()
	l.current = nil
}

// Current returns the playing playlist and track, if any.
func (l *Library) Current() (Id, *Track, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.current == nil || l.playing == 0 {
		return "", nil, false
	}
	return l.current.Id, l.current.Tracks[l.current.currentTrack], true
}

func (l *Library) play() error {
	pl := l.current
	track := pl.Tracks[pl.currentTrack]
	id, err := l.player.PlayMusic(track.Path, track.Volume, len(pl.Tracks) == 1)
	if err != nil {
		l.logger.Warn("failed to play track", "playlist", pl.Id, "track", track.Path, "error", err)
		return fmt.Errorf("playlist %s: %w", pl.Id, err)
	}
	l.playing = id
	l.logger.Info("playing track", "playlist", pl.Id, "track", track.Path, "name", track.Name)
	return nil
}

func (l *Library) stop() {
	if l.playing != 0 {
		l.player.Stop(l.playing)
		l.playing = 0
	}
}

func (l *Library) onComplete(id audio.PlaybackID) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.current == nil || id != l.playing {
		return
	}
	l.playing = 0
	l.current.currentTrack = (l.current.currentTrack + 1) % len(l.current.Tracks)
	_ = l.play()
}
