package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/voxel-light/cmd/codegen/internal/generator"
)

func main() {
	schemeDir := flag.String("scheme", "", "path to the scheme directory (e.g. ./data/pc-1.21.8)")
	outDir := flag.String("out", "./registries", "output directory for generated registries")
	version := flag.String("version", "", "registry name (default: scheme dir name)")
	emitters := flag.Bool("light-only", false, "keep only blocks that emit, filter or stop light")

	flag.Parse()

	if *schemeDir == "" {
		fmt.Fprintln(os.Stderr, "error: -scheme flag is required")
		flag.Usage()
		os.Exit(1)
	}

	name := *version
	if name == "" {
		name = filepath.Base(*schemeDir)
	}

	fmt.Printf("codegen: generating %s from %s\n", name, *schemeDir)

	cfg := generator.Config{
		SchemeDir: *schemeDir,
		OutDir:    *outDir,
		Version:   name,
		Emitters:  *emitters,
	}

	path, n, err := generator.Run(cfg)
	if err != nil {
		log.Fatalf("codegen failed: %v", err)
	}

	fmt.Printf("codegen: wrote %d blocks to %s\n", n, path)
}
