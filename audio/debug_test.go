package audio_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lundis/go-voicepool/audio"
	"github.com/Lundis/go-voicepool/backend/backendtest"
)

func TestDebugInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	uninit := audio.New(backendtest.New(), audio.Options{Logger: logger})
	uninit.DebugInfo()
	assert.Contains(t, buf.String(), "audio engine not initialized")

	buf.Reset()
	f := newFixture(t, audio.Options{Logger: logger})
	f.play(t, "a.wav", 7)
	buf.Reset()
	f.engine.DebugInfo()

	out := buf.String()
	assert.Contains(t, out, "module=audio")
	assert.Contains(t, out, "active=1")
	assert.Contains(t, out, "priority=7")
	assert.Contains(t, out, "name=a.wav")
}
