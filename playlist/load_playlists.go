package playlist

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

var registryNames = []string{"playlist.json", "playlist.yaml", "playlist.yml"}

// LoadFolder loads playlists from a regular folder.
// See Load for more information.
func (l *Library) LoadFolder(folder string) error {
	return l.Load(vfs.OS(folder))
}

// Load replaces the playlists with those of a registry file at the root of
// fileSystem ("playlist.json", or "playlist.yaml"). Playlists with a track
// that cannot be opened, or without tracks, are skipped.
func (l *Library) Load(fileSystem vfs.Opener) error {
	start := time.Now()
	playlists, err := loadRegistry(fileSystem)
	if err != nil {
		return err
	}
	loaded := make(map[Id]*PlayList, len(playlists))
playlistLoop:
	for _, pl := range playlists {
		if len(pl.Tracks) == 0 {
			l.logger.Warn("playlist has no tracks", "playlist", pl.Id)
			continue
		}
		for _, track := range pl.Tracks {
			if err := checkFile(fileSystem, track.Path); err != nil {
				l.logger.Warn("failed to open music track", "playlist", pl.Id, "track", track.Path, "error", err)
				continue playlistLoop
			}
		}
		loaded[pl.Id] = pl
	}

	l.lock.Lock()
	l.stop()
	l.current = nil
	l.playLists = loaded
	l.lock.Unlock()

	l.logger.Info("loaded playlists",
		"count", len(loaded),
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

func loadRegistry(fs vfs.Opener) (registry []*PlayList, err error) {
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
