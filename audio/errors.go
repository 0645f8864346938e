package audio

import (
	"errors"

	"github.com/Lundis/go-voicepool/loaders"
)

var (
	ErrBackendUnavailable = errors.New("audio backend unavailable")
	ErrNoVoiceAvailable   = errors.New("no voice available")
	ErrDisabled           = errors.New("audio disabled")
	ErrNotInitialized     = errors.New("audio engine not initialized")
	ErrAlreadyInitialized = errors.New("audio engine already initialized")
	ErrInvalidName        = errors.New("invalid sound name")

	ErrUnsupportedFormat = loaders.ErrUnsupportedFormat
	ErrDecodeFailed      = loaders.ErrDecodeFailed
)
