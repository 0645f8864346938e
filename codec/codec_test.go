package codec_test

import (
	"testing"

	"github.com/Lundis/go-voicepool/codec"
	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want codec.Tag
	}{
		{"splash.wav", codec.WAV},
		{"SPLASH.WAV", codec.WAV},
		{"music/theme.Ogg", codec.OGG},
		{"theme.oga", codec.OGG},
		{"jingle.mp3", codec.MP3},
		{"blip.raw", codec.Raw},
		{"blip.pcm", codec.Raw},
		{"archive.tar.wav", codec.WAV},
		{"readme.txt", codec.Unknown},
		{"noextension", codec.Unknown},
		{"dir.wav/file", codec.Unknown},
		{`dir.wav\file`, codec.Unknown},
		{"trailingdot.", codec.Unknown},
		{"", codec.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, codec.Detect(tt.name), tt.name)
	}
}

func TestTagString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "wav", codec.WAV.String())
	assert.Equal(t, "ogg", codec.OGG.String())
	assert.Equal(t, "mp3", codec.MP3.String())
	assert.Equal(t, "raw", codec.Raw.String())
	assert.Equal(t, "unknown", codec.Unknown.String())
	assert.Equal(t, "unknown", codec.Tag(42).String())
}
