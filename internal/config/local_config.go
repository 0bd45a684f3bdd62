package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds the bootstrap-time settings read directly from
// .skyboard/config.yaml, bypassing the viper singleton. These are the
// handful of settings needed before anything else (viper, the snapshot
// loader, the materializer) is constructed, or when a command needs to
// check configuration from a different working directory than the one
// viper was initialized with.
type LocalConfig struct {
	// Viewer is the party identifier (DID) the CLI acts as when resolving
	// visibility and building new ops.
	Viewer string `yaml:"viewer"`
	// DefaultBoardURI is used when a command omits --board.
	DefaultBoardURI string `yaml:"default-board-uri"`
	// SnapshotRoot is the configured snapshot root directory. internal/snapshot
	// does not read it; party directories come from the repos.yaml registry.
	SnapshotRoot string `yaml:"snapshot-root"`
}

// LoadLocalConfig reads and parses config.yaml directly from the given
// skyboard directory. It returns an empty, non-nil LocalConfig if the file
// does not exist or cannot be parsed — callers treat an empty LocalConfig
// as "nothing configured yet" rather than an error.
func LoadLocalConfig(skyboardDir string) *LocalConfig {
	configPath := filepath.Join(skyboardDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from skyboardDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment variable
// overrides, which take precedence over file values.
//
// Supported environment variables:
//   - SKYBOARD_VIEWER: overrides viewer
//   - SKYBOARD_SNAPSHOT_ROOT: overrides snapshot-root
func LoadLocalConfigWithEnv(skyboardDir string) *LocalConfig {
	cfg := LoadLocalConfig(skyboardDir)

	if v := os.Getenv("SKYBOARD_VIEWER"); v != "" {
		cfg.Viewer = v
	}
	if root := os.Getenv("SKYBOARD_SNAPSHOT_ROOT"); root != "" {
		cfg.SnapshotRoot = root
	}

	return cfg
}

// GetLocalViewer reads the configured viewer identity, environment first.
func GetLocalViewer(skyboardDir string) string {
	return LoadLocalConfigWithEnv(skyboardDir).Viewer
}
