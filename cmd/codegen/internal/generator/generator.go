package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/voxel-light/internal/sim"
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

type Config struct {
	SchemeDir string
	OutDir    string
	Version   string
	// Emitters keeps only blocks that emit or stop light when set.
	Emitters bool
}

// Run converts the blocks.json of SchemeDir, refined by its
// blockCollisionShapes.json when present, into <OutDir>/<Version>.yaml.
// It returns the output path and the number of blocks written.
func Run(cfg Config) (string, int, error) {
	shapes := filepath.Join(cfg.SchemeDir, "blockCollisionShapes.json")
	if _, err := os.Stat(shapes); err != nil {
		shapes = ""
	}
	reg, err := sim.LoadRegistry(filepath.Join(cfg.SchemeDir, "blocks.json"), "json", shapes)
	if err != nil {
		return "", 0, err
	}

	blocks := reg.All()
	if cfg.Emitters {
		blocks = interesting(blocks)
	}

	var buf bytes.Buffer
	header := fmt.Sprintf("Light properties of minecraft-data %s.", cfg.Version)
	if err := gamedata.WriteFixtures(&buf, header, blocks); err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output directory: %w", err)
	}
	outFile := filepath.Join(cfg.OutDir, cfg.Version+".yaml")
	if err := os.WriteFile(outFile, buf.Bytes(), 0o644); err != nil {
		return "", 0, fmt.Errorf("write %s: %w", outFile, err)
	}
	return outFile, len(blocks), nil
}

// interesting keeps air and every block that is not plain transparent.
func interesting(blocks []gamedata.Block) []gamedata.Block {
	out := blocks[:0:0]
	for _, b := range blocks {
		p := b.Light
		if b.ID == 0 || p.Class != gamedata.Transparent || p.Emission > 0 || p.Full != 0 {
			out = append(out, b)
		}
	}
	return out
}
