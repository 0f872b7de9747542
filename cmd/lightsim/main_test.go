package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/OCharnyshevich/voxel-light/internal/config"
	"github.com/OCharnyshevich/voxel-light/internal/sim"
	"github.com/OCharnyshevich/voxel-light/internal/storage"
	"github.com/OCharnyshevich/voxel-light/pkg/gamedata"
)

func TestRunSampleScenario(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ScenarioPath = "testdata/torch.yaml"
	cfg.SnapshotDir = t.TempDir()
	cfg.Workers = 2
	log := slog.New(slog.DiscardHandler)

	failed, err := run(context.Background(), cfg, nil, runOptions{}, log)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 0 {
		t.Errorf("run reported %d failed checks", failed)
	}

	snaps, err := storage.New(cfg.SnapshotDir, log)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	got, err := snaps.LoadSnapshot("torch_on_stone")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(got) != 9 {
		t.Errorf("snapshot holds %d chunks, want 9", len(got))
	}
}

func TestRunAgainstBaseline(t *testing.T) {
	dir := t.TempDir()
	log := slog.New(slog.DiscardHandler)
	store, err := storage.New(dir, log)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.ScenarioPath = "testdata/torch.yaml"
	cfg.RegistryVersion = gamedata.FixturesVersion
	cfg.SnapshotDir = dir

	if _, err := run(context.Background(), cfg, store, runOptions{Baseline: "torch_on_stone"}, log); err == nil {
		t.Fatal("run accepted a missing baseline")
	}

	// The first run saves the snapshot the second run compares against.
	failed, err := run(context.Background(), cfg, store, runOptions{Export: true}, log)
	if err != nil || failed != 0 {
		t.Fatalf("run = %d, %v, want 0, nil", failed, err)
	}
	failed, err = run(context.Background(), cfg, store, runOptions{Export: true, Baseline: "torch_on_stone"}, log)
	if err != nil || failed != 0 {
		t.Fatalf("run against baseline = %d, %v, want 0, nil", failed, err)
	}

	back, err := store.ImportRegions()
	if err != nil {
		t.Fatalf("ImportRegions: %v", err)
	}
	if len(back) != 9 {
		t.Errorf("exported %d chunks, want 9", len(back))
	}

	// Tamper with one chunk of the baseline.
	want, err := store.LoadSnapshot("torch_on_stone")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	for _, a := range want[0].Sections {
		a.Set(0, 0x11)
		break
	}
	if err := store.SaveSnapshot("tampered", want); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	failed, err = run(context.Background(), cfg, store, runOptions{Baseline: "tampered"}, log)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 1 {
		t.Errorf("run against a tampered baseline failed %d checks, want 1", failed)
	}
}

func TestRunRejectsVersionWithFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ScenarioPath = "testdata/torch.yaml"
	cfg.RegistryVersion = gamedata.FixturesVersion
	cfg.RegistryPath = "blocks.yaml"
	if _, err := run(context.Background(), cfg, nil, runOptions{}, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("run accepted both a registry version and a registry file")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSnapshotName(t *testing.T) {
	if got := snapshotName(&sim.Scenario{}); got != "scenario" {
		t.Errorf("snapshotName(unnamed) = %q, want scenario", got)
	}
	if got := snapshotName(&sim.Scenario{Name: "a/b"}); got != "a_b" {
		t.Errorf("snapshotName(a/b) = %q, want a_b", got)
	}
}
