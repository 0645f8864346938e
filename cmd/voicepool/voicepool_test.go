package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	root := rootCommand()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(ctx))
	require.NoError(t, ctx.Err(), "command did not finish in time")
	return out.String()
}

func TestSineWave(t *testing.T) {
	data := sineWave(441, 100*time.Millisecond, 44100, 2)
	require.Len(t, data, 4410*2*2)

	left := int16(binary.LittleEndian.Uint16(data[0:]))
	assert.Equal(t, int16(0), left)
	// a quarter period in, at 25 frames
	peak := int16(binary.LittleEndian.Uint16(data[25*4:]))
	right := int16(binary.LittleEndian.Uint16(data[25*4+2:]))
	assert.InDelta(t, 0.3*32767, float64(peak), 2)
	assert.Equal(t, peak, right)
}

func TestInfo(t *testing.T) {
	out := run(t, "--device", "none", "info")
	assert.Contains(t, out, "backend:  soft")
	assert.Contains(t, out, "policy:   steal-lowest")
	assert.Contains(t, out, "voices:   0 active of 32")
	assert.Contains(t, out, "SLOT")
}

func TestTone(t *testing.T) {
	out := run(t, "--device", "null", "tone", "--duration", "50ms", "--delay", "0s", "--freq", "440,880")
	assert.Contains(t, out, "#1 tone-0.raw (440.00 Hz)")
	assert.Contains(t, out, "#2 tone-1.raw (880.00 Hz)")
}

func TestPlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blip.raw")
	require.NoError(t, os.WriteFile(path, sineWave(440, 30*time.Millisecond, 44100, 2), 0o644))

	out := run(t, "--device", "null", "play", "--priority", "3", path)
	assert.Contains(t, out, "playing #1 ")
}

func TestPlayMoreFilesThanVoices(t *testing.T) {
	t.Setenv("VOICEPOOL_VOICES", "1")
	dir := t.TempDir()
	var args []string
	for _, name := range []string{"a.raw", "b.raw", "c.raw"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, sineWave(440, 30*time.Millisecond, 44100, 2), 0o644))
		args = append(args, path)
	}

	out := run(t, append([]string{"--device", "null", "play"}, args...)...)
	assert.Contains(t, out, "playing #3 ")
}

func TestPlayMissingFile(t *testing.T) {
	root := rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--device", "none", "play", filepath.Join(t.TempDir(), "missing.wav")})
	require.Error(t, root.Execute())
}

func TestUnknownBackend(t *testing.T) {
	root := rootCommand()
	root.SetArgs([]string{"--backend", "pulse", "info"})
	require.Error(t, root.Execute())
}
