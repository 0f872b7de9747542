package gamedata

import (
	"fmt"
	"sort"
	"sync"
)

var (
	versionsMu sync.RWMutex
	versions   = map[string]func() (*GameData, error){}
)

// Register installs a factory for the named data version.
func Register(name string, factory func() (*GameData, error)) {
	versionsMu.Lock()
	defer versionsMu.Unlock()
	versions[name] = factory
}

// Load builds the GameData of a registered version.
func Load(name string) (*GameData, error) {
	versionsMu.RLock()
	f, ok := versions[name]
	versionsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown version: %s", name)
	}
	gd, err := f()
	if err != nil {
		return nil, fmt.Errorf("load version %s: %w", name, err)
	}
	return gd, nil
}

// RegisteredVersions returns the registered version names, sorted.
func RegisteredVersions() []string {
	versionsMu.RLock()
	defer versionsMu.RUnlock()
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(FixturesVersion, func() (*GameData, error) {
		blocks, err := Fixtures()
		if err != nil {
			return nil, err
		}
		return &GameData{Version: FixturesVersion, Blocks: blocks}, nil
	})
}
