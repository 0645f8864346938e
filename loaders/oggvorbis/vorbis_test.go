package oggvorbis_test

import (
	"bytes"
	"testing"

	"github.com/Lundis/go-voicepool/loaders/oggvorbis"
	"github.com/stretchr/testify/require"
)

func TestRejectsNonOgg(t *testing.T) {
	_, err := oggvorbis.Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	require.Error(t, err)
}

func TestRejectsEmpty(t *testing.T) {
	_, err := oggvorbis.Decoder{Channels: 2}.Decode(bytes.NewReader(nil))
	require.Error(t, err)
}
