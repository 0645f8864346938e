//go:build darwin || freebsd || linux

package openal

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

func libraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"/System/Library/Frameworks/OpenAL.framework/OpenAL", "libopenal.dylib"}
	}
	return []string{"libopenal.so.1", "libopenal.so"}
}

func openLibrary(path string) (uintptr, error) {
	names := libraryNames()
	if path != "" {
		names = []string{path}
	}
	var errs []error
	for _, name := range names {
		lib, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return lib, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return 0, errors.Join(errs...)
}

func closeLibrary(lib uintptr) {
	_ = purego.Dlclose(lib)
}
