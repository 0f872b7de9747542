package sim

import (
	"fmt"
	"os"

	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

// LoadRegistry builds the block registry. An empty path selects the built-in
// fixtures. format is "yaml" for a fixture table or "json" for a
// minecraft-data blocks.json, optionally refined by a collision shapes file.
func LoadRegistry(path, format, shapes string) (*gamedata.Blocks, error) {
	if path == "" {
		return gamedata.Fixtures()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	switch format {
	case "yaml", "":
		return gamedata.LoadFixtures(f)
	case "json":
		blocks, err := gamedata.LoadBlocksJSON(f)
		if err != nil {
			return nil, err
		}
		if shapes == "" {
			return blocks, nil
		}
		sf, err := os.Open(shapes)
		if err != nil {
			return nil, fmt.Errorf("open collision shapes: %w", err)
		}
		defer sf.Close()
		cs, err := gamedata.ParseCollisionShapes(sf)
		if err != nil {
			return nil, err
		}
		blocks.ApplyShapes(cs)
		return blocks, nil
	default:
		return nil, fmt.Errorf("unknown registry format %q", format)
	}
}

// OpenRegistry resolves the registry of a run: the registered data version
// when version is set, otherwise the file read by LoadRegistry.
func OpenRegistry(version, path, format, shapes string) (gamedata.BlockRegistry, error) {
	if version == "" {
		blocks, err := LoadRegistry(path, format, shapes)
		if err != nil {
			return nil, err
		}
		return blocks, nil
	}
	if path != "" {
		return nil, fmt.Errorf("registry version %q and registry file %s are exclusive", version, path)
	}
	gd, err := gamedata.Load(version)
	if err != nil {
		return nil, err
	}
	return gd.Blocks, nil
}
