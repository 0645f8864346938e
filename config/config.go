// Package config loads engine settings from a YAML file and VOICEPOOL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/tools/godoc/vfs"

	"github.com/Lundis/go-voicepool/audio"
	"github.com/Lundis/go-voicepool/backend"
	"github.com/Lundis/go-voicepool/backend/openal"
	"github.com/Lundis/go-voicepool/backend/soft"
)

const EnvPrefix = "VOICEPOOL"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Voices       int           `mapstructure:"voices"`
	Buffers      int           `mapstructure:"buffers"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	Policy       string        `mapstructure:"policy"`
	StaticGain   bool          `mapstructure:"static_gain"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	// Assets is the directory sound names are resolved against.
	Assets string `mapstructure:"assets"`

	Backend BackendConfig `mapstructure:"backend"`
	Volume  VolumeConfig  `mapstructure:"volume"`
}

type BackendConfig struct {
	// Name is "soft" or "openal".
	Name string `mapstructure:"name"`
	// Device selects the soft backend output: malgo, null or none.
	Device     string `mapstructure:"device"`
	SampleRate int    `mapstructure:"sample_rate"`
	// Library overrides the OpenAL shared library path.
	Library string `mapstructure:"library"`
}

// VolumeConfig holds the levels applied right after Init.
type VolumeConfig struct {
	Master       float32 `mapstructure:"master"`
	Music        float32 `mapstructure:"music"`
	Sfx          float32 `mapstructure:"sfx"`
	Enabled      bool    `mapstructure:"enabled"`
	MusicEnabled bool    `mapstructure:"music_enabled"`
	SfxEnabled   bool    `mapstructure:"sfx_enabled"`
}

func setDefaults(v *viper.Viper) {
	s := audio.DefaultSettings()

	v.SetDefault("voices", audio.DefaultVoices)
	v.SetDefault("buffers", audio.DefaultBuffers)
	v.SetDefault("reap_interval", audio.DefaultReapInterval)
	v.SetDefault("policy", audio.StealLowest{}.Name())
	v.SetDefault("static_gain", false)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("assets", ".")

	v.SetDefault("backend.name", "soft")
	v.SetDefault("backend.device", soft.DeviceMalgo)
	v.SetDefault("backend.sample_rate", soft.DefaultSampleRate)
	v.SetDefault("backend.library", "")

	v.SetDefault("volume.master", s.Master)
	v.SetDefault("volume.music", s.Music)
	v.SetDefault("volume.sfx", s.Sfx)
	v.SetDefault("volume.enabled", s.Enabled)
	v.SetDefault("volume.music_enabled", s.MusicEnabled)
	v.SetDefault("volume.sfx_enabled", s.SfxEnabled)
}

// Load reads path, if not empty, on top of the defaults. Environment
// variables such as VOICEPOOL_BACKEND_DEVICE override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Voices <= 0:
		return fmt.Errorf("%w: voices must be positive, got %d", ErrInvalid, c.Voices)
	case c.Buffers <= 0:
		return fmt.Errorf("%w: buffers must be positive, got %d", ErrInvalid, c.Buffers)
	case c.Backend.Name != "soft" && c.Backend.Name != "openal":
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend.Name)
	}
	if _, ok := audio.PolicyByName(c.Policy); !ok {
		return fmt.Errorf("%w: unknown eviction policy %q", ErrInvalid, c.Policy)
	}
	return nil
}

// EngineOptions maps c onto audio.Options.
func (c *Config) EngineOptions(logger *slog.Logger, metrics *audio.Metrics) audio.Options {
	policy, _ := audio.PolicyByName(c.Policy)
	return audio.Options{
		Voices:       c.Voices,
		Buffers:      c.Buffers,
		ReapInterval: c.ReapInterval,
		Policy:       policy,
		StaticGain:   c.StaticGain,
		Assets:       vfs.OS(c.Assets),
		CacheTTL:     c.CacheTTL,
		Logger:       logger,
		Metrics:      metrics,
	}
}

// NewBackend builds the configured backend.
func (c *Config) NewBackend(logger *slog.Logger) backend.Backend {
	if c.Backend.Name == "openal" {
		return openal.New(openal.Options{Library: c.Backend.Library, Logger: logger})
	}
	return soft.New(soft.Options{
		Device:     c.Backend.Device,
		SampleRate: c.Backend.SampleRate,
		Logger:     logger,
	})
}

// ApplySettings sets the configured volumes and enable flags on an
// initialized engine.
func (c *Config) ApplySettings(e *audio.Engine) {
	e.SetMasterVolume(c.Volume.Master)
	e.SetMusicVolume(c.Volume.Music)
	e.SetSfxVolume(c.Volume.Sfx)
	e.Enable(c.Volume.Enabled)
	e.EnableMusic(c.Volume.MusicEnabled)
	e.EnableSfx(c.Volume.SfxEnabled)
}
