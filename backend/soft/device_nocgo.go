//go:build !cgo

package soft

import (
	"errors"
	"time"
)

func newMalgoDevice(*mixer, int, time.Duration) (device, error) {
	return nil, errors.New("malgo requires cgo")
}
