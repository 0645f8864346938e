package sfx

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"

	"github.com/Lundis/go-voicepool/audio"
)

type played struct {
	name     string
	volume   float32
	looping  bool
	priority int
}

type fakePlayer struct {
	mu    sync.Mutex
	calls []played
	err   error
}

func (p *fakePlayer) PlaySound(name string, volume float32, looping bool, priority int) (audio.PlaybackID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.calls = append(p.calls, played{name, volume, looping, priority})
	return audio.PlaybackID(len(p.calls)), nil
}

const registryJSON = `[
  {"id": "ui-click", "volume": 0.5, "priority": 3, "variations": [
    {"path": "click1.wav", "probability": 1, "volume": 0.5},
    {"path": "missing.wav", "probability": 1, "volume": 1}
  ]},
  {"id": "explosion", "volume": 1, "throttlingMs": 100, "variations": [
    {"path": "boom1.wav", "probability": 0.5, "volume": 1, "throttlingMs": 1000},
    {"path": "boom2.wav", "probability": 0.5, "volume": 0.8}
  ]}
]`

const registryYAML = `
- id: rain.loop
  volume: 1
  looping: true
  variations:
    - path: rain.ogg
      probability: 1
      volume: 0.25
`

func newTestLibrary(t *testing.T, files map[string]string) (*Library, *fakePlayer, *time.Time) {
	t.Helper()
	player := &fakePlayer{}
	l := NewLibrary(player, nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.random = func() float64 { return 0 }
	require.NoError(t, l.Load(mapfs.New(files)))
	return l, player, &now
}

func sfxFiles() map[string]string {
	return map[string]string{
		"sfx.json":   registryJSON,
		"click1.wav": "x",
		"boom1.wav":  "x",
		"boom2.wav":  "x",
	}
}

func TestLoadDropsMissingVariations(t *testing.T) {
	l, _, _ := newTestLibrary(t, sfxFiles())
	assert.ElementsMatch(t, []Id{"ui-click", "explosion"}, l.Ids())
	require.Len(t, l.effects["ui-click"].Variations, 1)
	assert.Equal(t, "click1.wav", l.effects["ui-click"].Variations[0].Path)
}

func TestLoadYAML(t *testing.T) {
	l, player, _ := newTestLibrary(t, map[string]string{
		"sfx.yaml": registryYAML,
		"rain.ogg": "x",
	})
	_, err := l.Play("rain.loop")
	require.NoError(t, err)
	assert.Equal(t, []played{{"rain.ogg", 0.25, true, 0}}, player.calls)
}

func TestLoadErrors(t *testing.T) {
	l := NewLibrary(&fakePlayer{}, nil)
	require.Error(t, l.Load(mapfs.New(map[string]string{})))
	require.Error(t, l.Load(mapfs.New(map[string]string{"sfx.json": "{not json"})))
}

func TestPlay(t *testing.T) {
	l, player, _ := newTestLibrary(t, sfxFiles())

	id, err := l.Play("ui-click")
	require.NoError(t, err)
	assert.Equal(t, audio.PlaybackID(1), id)
	assert.Equal(t, []played{{"click1.wav", 0.25, false, 3}}, player.calls)

	_, err = l.Play("nope")
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestThrottling(t *testing.T) {
	l, player, now := newTestLibrary(t, sfxFiles())

	_, err := l.Play("explosion")
	require.NoError(t, err)
	assert.Equal(t, "boom1.wav", player.calls[0].name)

	_, err = l.Play("explosion")
	require.ErrorIs(t, err, ErrThrottled, "effect throttled for 100ms")

	*now = now.Add(200 * time.Millisecond)
	_, err = l.Play("explosion")
	require.NoError(t, err)
	assert.Equal(t, "boom2.wav", player.calls[1].name, "boom1 is still throttled, only boom2 is eligible")
	assert.InDelta(t, 0.8, player.calls[1].volume, 1e-6)

	*now = now.Add(2 * time.Second)
	_, err = l.Play("explosion")
	require.NoError(t, err)
	assert.Equal(t, "boom1.wav", player.calls[2].name)
}

func TestPlayerErrorDoesNotThrottle(t *testing.T) {
	l, player, _ := newTestLibrary(t, sfxFiles())
	player.err = audio.ErrDisabled

	_, err := l.Play("explosion")
	require.True(t, errors.Is(err, audio.ErrDisabled))

	player.err = nil
	_, err = l.Play("explosion")
	require.NoError(t, err)
}

func TestPickWeighted(t *testing.T) {
	e := &Sfx{Variations: []*SfxVariant{
		{Path: "a", Probability: 1},
		{Path: "b", Probability: 3},
	}}
	now := time.Now()
	assert.Equal(t, "a", e.pick(now, 0.1).Path)
	assert.Equal(t, "b", e.pick(now, 0.5).Path)
	assert.Equal(t, "b", e.pick(now, 0.99).Path)
	assert.Nil(t, (&Sfx{}).pick(now, 0))
}

func TestScheduler(t *testing.T) {
	l, player, _ := newTestLibrary(t, sfxFiles())
	s := NewScheduler(l)

	s.PlaySoundEffectAt("ui-click", 10)
	s.PlaySoundEffectAt("ui-click", 1)
	s.PlaySoundEffectAt("explosion", 20)

	s.Process(9)
	assert.Empty(t, player.calls, "sounds more than 3 behind are dropped")
	assert.Equal(t, 2, s.Len())

	s.Process(10)
	assert.Len(t, player.calls, 1)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	s.Process(30)
	assert.Len(t, player.calls, 1)
}

func TestSchedulerLogsFailedPlays(t *testing.T) {
	l, player, _ := newTestLibrary(t, sfxFiles())
	var buf bytes.Buffer
	l.logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewScheduler(l)

	s.PlaySoundEffectAt("explosion", 1)
	s.PlaySoundEffectAt("explosion", 1)
	s.PlaySoundEffectAt("unknown", 1)
	s.Process(1)

	assert.Len(t, player.calls, 1)
	assert.Zero(t, s.Len())
	out := buf.String()
	assert.Contains(t, out, "scheduled sound not played")
	assert.Contains(t, out, ErrThrottled.Error())
	assert.Contains(t, out, "id=unknown")
}

func TestExportConstants(t *testing.T) {
	l, _, _ := newTestLibrary(t, map[string]string{
		"sfx.json": `[{"id": "ui-click"}, {"id": "big_explosion.v2"}, {"id": "rain loop"}]`,
	})
	assert.Equal(t, map[string]string{
		"UiClick":        "ui-click",
		"BigExplosionV2": "big_explosion.v2",
		"RainLoop":       "rain loop",
	}, l.ExportConstants())
}
