package config

// Config holds the light simulator configuration.
type Config struct {
	RegistryVersion string `json:"registry_version"` // registered data version, instead of a file
	RegistryPath    string `json:"registry_path"`    // empty = built-in fixtures
	RegistryFormat  string `json:"registry_format"`  // "yaml" or "json"
	ShapesPath      string `json:"shapes_path"`      // blockCollisionShapes.json, json format only
	ScenarioPath    string `json:"scenario_path"`
	Workers         int    `json:"workers"` // 0 = one per CPU
	LogLevel        string `json:"log_level"`
	SnapshotDir     string `json:"snapshot_dir"` // empty disables snapshots
	PrintSliceY     *int   `json:"print_slice_y,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RegistryFormat: "yaml",
		LogLevel:       "info",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["registry-version"] {
		cfg.RegistryVersion = fromFile.RegistryVersion
	}
	if !explicitFlags["registry"] {
		cfg.RegistryPath = fromFile.RegistryPath
	}
	if !explicitFlags["format"] {
		cfg.RegistryFormat = fromFile.RegistryFormat
	}
	if !explicitFlags["shapes"] {
		cfg.ShapesPath = fromFile.ShapesPath
	}
	if !explicitFlags["scenario"] {
		cfg.ScenarioPath = fromFile.ScenarioPath
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["snapshot-dir"] {
		cfg.SnapshotDir = fromFile.SnapshotDir
	}
	if !explicitFlags["slice-y"] {
		cfg.PrintSliceY = fromFile.PrintSliceY
	}
}
