package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/OCharnyshevich/voxel-light/internal/config"
	"github.com/OCharnyshevich/voxel-light/internal/sim"
	"github.com/OCharnyshevich/voxel-light/internal/storage"
	"github.com/OCharnyshevich/voxel-light/internal/world"
	"github.com/OCharnyshevich/voxel-light/internal/world/codec"
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

func main() {
	cfg := config.DefaultConfig()
	var (
		dataDir = flag.String("data", "", "data directory holding config.json, snapshots and region exports")
		export  = flag.Bool("export", false, "export the final light as region files")
		sliceY  = flag.Int("slice-y", 0, "print the light of this horizontal plane")
		opts    runOptions
	)
	flag.StringVar(&opts.Baseline, "baseline", "", "compare the final light with this saved snapshot")
	flag.StringVar(&cfg.RegistryVersion, "registry-version", cfg.RegistryVersion, "registered data version to use instead of a registry file")
	flag.StringVar(&cfg.RegistryPath, "registry", cfg.RegistryPath, "block registry file (empty = built-in fixtures)")
	flag.StringVar(&cfg.RegistryFormat, "format", cfg.RegistryFormat, "registry format: yaml or json")
	flag.StringVar(&cfg.ShapesPath, "shapes", cfg.ShapesPath, "blockCollisionShapes.json for the json format")
	flag.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "scenario file")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "recompute workers (0 = one per CPU)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flag.StringVar(&cfg.SnapshotDir, "snapshot-dir", cfg.SnapshotDir, "save a light snapshot named after the scenario")
	flag.Usage = usage
	flag.Parse()
	opts.Export = *export

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["slice-y"] {
		cfg.PrintSliceY = sliceY
	}

	var store *storage.Storage
	if *dataDir != "" {
		var err error
		store, err = storage.New(*dataDir, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		if err != nil {
			slog.Error("open data dir", "error", err)
			os.Exit(1)
		}
		fromFile := *cfg
		if err := store.LoadConfig(&fromFile); err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, &fromFile, explicit)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	if cfg.ScenarioPath == "" {
		log.Error("scenario required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	failed, err := run(ctx, cfg, store, opts, log)
	if err != nil {
		log.Error("lightsim failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		log.Warn("scenario checks failed", "failed", failed)
		os.Exit(3)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s -scenario FILE [flags]\n\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(out, "\nRegistered data versions: %s\n", strings.Join(gamedata.RegisteredVersions(), ", "))
}

type runOptions struct {
	Export   bool   // write region files under -data and read them back
	Baseline string // snapshot to compare the final light with
}

func run(ctx context.Context, cfg *config.Config, store *storage.Storage, opts runOptions, log *slog.Logger) (int, error) {
	reg, err := sim.OpenRegistry(cfg.RegistryVersion, cfg.RegistryPath, cfg.RegistryFormat, cfg.ShapesPath)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(cfg.ScenarioPath)
	if err != nil {
		return 0, err
	}
	sc, err := sim.Parse(f)
	f.Close()
	if err != nil {
		return 0, err
	}

	w, res, err := sim.Run(ctx, reg, sc, world.Options{Logger: log, Workers: cfg.Workers})
	if err != nil {
		return 0, err
	}
	st := w.Stats()
	log.Info("scenario done", "name", sc.Name, "passes", st.Passes, "raised", st.Raised, "lowered", st.Lowered)

	captured := sim.Capture(w)

	snaps := store
	if cfg.SnapshotDir != "" {
		if snaps, err = storage.New(cfg.SnapshotDir, log); err != nil {
			return 0, err
		}
	}
	if opts.Baseline != "" {
		if snaps == nil {
			return 0, fmt.Errorf("baseline %s needs -data or -snapshot-dir", opts.Baseline)
		}
		want, err := snaps.LoadSnapshot(opts.Baseline)
		if err != nil {
			return 0, err
		}
		if want == nil {
			return 0, fmt.Errorf("baseline %s not found", opts.Baseline)
		}
		res.Drift = sim.Compare(captured, want)
		if len(res.Drift) > 0 {
			log.Warn("light differs from baseline", "baseline", opts.Baseline, "chunks", len(res.Drift))
		}
	}

	if cfg.PrintSliceY != nil {
		sim.PrintSlice(os.Stdout, w, sc.Chunks, *cfg.PrintSliceY)
	}
	sim.PrintResult(os.Stdout, res)

	if cfg.SnapshotDir != "" {
		if err := snaps.SaveSnapshot(snapshotName(sc), captured); err != nil {
			return 0, err
		}
	}
	if opts.Export {
		if store == nil {
			log.Warn("export needs -data, skipped")
		} else if err := exportRegions(store, captured); err != nil {
			return 0, err
		}
	}

	return res.Failed(), nil
}

// exportRegions writes the captured light as region files and reads them
// back, failing when the files do not hold exactly that light.
func exportRegions(store *storage.Storage, captured []codec.ChunkLight) error {
	if _, err := store.ExportRegions(captured); err != nil {
		return err
	}
	back, err := store.ImportRegions()
	if err != nil {
		return fmt.Errorf("read back regions: %w", err)
	}
	// Region files may hold chunks of earlier exports.
	want := make(map[world.ChunkPos]bool, len(captured))
	for _, cl := range captured {
		want[cl.Pos] = true
	}
	ours := back[:0]
	for _, cl := range back {
		if want[cl.Pos] {
			ours = append(ours, cl)
		}
	}
	if diff := sim.Compare(ours, captured); len(diff) > 0 {
		return fmt.Errorf("region files differ from the captured light in %d chunks, first %v", len(diff), diff[0])
	}
	return nil
}

func snapshotName(sc *sim.Scenario) string {
	if sc.Name == "" {
		return "scenario"
	}
	return strings.ReplaceAll(sc.Name, string(os.PathSeparator), "_")
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
