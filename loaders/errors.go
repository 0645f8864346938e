package loaders

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrDecodeFailed      = errors.New("audio decode failed")
)
