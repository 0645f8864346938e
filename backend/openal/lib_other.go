//go:build !(darwin || freebsd || linux || windows)

package openal

import (
	"errors"
	"runtime"
)

func openLibrary(string) (uintptr, error) {
	return 0, errors.New("openal: not supported on " + runtime.GOOS)
}

func closeLibrary(uintptr) {}
