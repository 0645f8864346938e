package sfx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"golang.org/x/tools/godoc/vfs"
	"gopkg.in/yaml.v3"
)

// registryNames are tried in order at the root of the filesystem.
var registryNames = []string{"sfx.json", "sfx.yaml", "sfx.yml"}

// LoadFolder loads sound effects from a regular folder.
// See Load for more information.
func (l *Library) LoadFolder(folder string) error {
	return l.Load(vfs.OS(folder))
}

// Load replaces the library with the effects of a registry file at the root
// of fileSystem ("sfx.json", or "sfx.yaml"). Variations whose file cannot be
// opened are dropped.
func (l *Library) Load(fileSystem vfs.Opener) error {
	start := time.Now()
	soundEffects, err := loadRegistry(fileSystem)
	if err != nil {
		return err
	}
	effects := make(map[Id]*Sfx, len(soundEffects))
	for _, e := range soundEffects {
		kept := e.Variations[:0]
		for _, v := range e.Variations {
			if err := checkFile(fileSystem, v.Path); err != nil {
				l.logger.Warn("failed to open sound effect", "id", e.Id, "path", v.Path, "error", err)
				continue
			}
			kept = append(kept, v)
		}
		e.Variations = kept
		effects[e.Id] = e
	}

	l.lock.Lock()
	l.effects = effects
	l.lock.Unlock()

	l.logger.Info("loaded sound effects",
		"count", len(effects),
		"duration", time.Since(start))
	return nil
}

func checkFile(fs vfs.Opener, path string) error {
	file, err := fs.Open(path)
	if err != nil {
		return err
	}
	return file.Close()
}

func readFile(fs vfs.Opener, path string) (data []byte, err error) {
	file, err := fs.Open(path)
	if err != nil {
		return
	}
	data, err = io.ReadAll(file)
	_ = file.Close()
	return
}

func loadRegistry(fs vfs.Opener) (registry []*Sfx, err error) {
	for _, name := range registryNames {
		data, err := readFile(fs, name)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		if path.Ext(name) == ".json" {
			err = json.Unmarshal(data, &registry)
		} else {
			err = yaml.Unmarshal(data, &registry)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return registry, nil
	}
	return nil, fmt.Errorf("failed to open %s: %w", registryNames[0], os.ErrNotExist)
}
