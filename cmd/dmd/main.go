package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/voxel-light/internal/sim"
)

func main() {
	var (
		base     = flag.String("base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
		platform = flag.String("platform", "pc", "platform of the dataset")
		ver      = flag.String("version", "1.21.8", "version of the dataset")
		out      = flag.String("o", "./data", "output dir path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *out == "" || *platform == "" || *ver == "" {
		log.Error("output dir, platform and version are required")
		os.Exit(2)
	}

	path := filepath.Join(*out, fmt.Sprintf("%s-%s", *platform, *ver))
	if err := os.RemoveAll(path); err != nil {
		log.Error("clean output dir", "path", path, "error", err)
		os.Exit(1)
	}

	log.Info("start downloading dataset", "path", path)

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.21.8
	url := fmt.Sprintf("git::%s//data/%s/%s", *base, *platform, *ver)
	if err := get.Get(path, url); err != nil {
		log.Error("download dataset", "url", url, "error", err)
		os.Exit(1)
	}

	n, err := check(path)
	if err != nil {
		log.Error("check dataset", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("done downloading dataset", "path", path, "blocks", n)
}

// check loads the downloaded block registry the way lightsim does.
func check(dir string) (int, error) {
	blocks := filepath.Join(dir, "blocks.json")
	shapes := filepath.Join(dir, "blockCollisionShapes.json")
	if _, err := os.Stat(shapes); err != nil {
		shapes = ""
	}
	reg, err := sim.LoadRegistry(blocks, "json", shapes)
	if err != nil {
		return 0, err
	}
	return len(reg.All()), nil
}
