package backend_test

import (
	"testing"

	"github.com/Lundis/go-voicepool/backend"
	"github.com/stretchr/testify/assert"
)

func TestSourceStateString(t *testing.T) {
	assert.Equal(t, "initial", backend.Initial.String())
	assert.Equal(t, "playing", backend.Playing.String())
	assert.Equal(t, "paused", backend.Paused.String())
	assert.Equal(t, "stopped", backend.Stopped.String())
	assert.Equal(t, "unknown", backend.SourceState(42).String())
}
