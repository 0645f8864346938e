// Package codec maps sound file names to the decoder that understands them.
package codec

import "strings"

// Tag identifies an audio container/codec.
type Tag int

const (
	Unknown Tag = iota
	WAV
	OGG
	MP3
	Raw
)

func (t Tag) String() string {
	switch t {
	case WAV:
		return "wav"
	case OGG:
		return "ogg"
	case MP3:
		return "mp3"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

var extensions = map[string]Tag{
	".wav": WAV,
	".ogg": OGG,
	".oga": OGG,
	".mp3": MP3,
	".raw": Raw,
	".pcm": Raw,
}

// Detect returns the Tag for name based on its extension, ignoring case.
// Names without a recognised extension yield Unknown.
func Detect(name string) Tag {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || strings.ContainsAny(name[dot:], `/\`) {
		return Unknown
	}
	return extensions[strings.ToLower(name[dot:])]
}
