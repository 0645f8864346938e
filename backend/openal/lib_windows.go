//go:build windows

package openal

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func openLibrary(path string) (uintptr, error) {
	if path == "" {
		path = "OpenAL32.dll"
	}
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return uintptr(h), nil
}

func closeLibrary(lib uintptr) {
	_ = windows.FreeLibrary(windows.Handle(lib))
}
