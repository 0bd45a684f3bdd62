package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the layered runtime configuration for the skyboard CLI and
// snapshot loader: environment variables (SKYBOARD_*) over config.yaml over
// built-in defaults, the way the teacher layers BEADS_* over its own
// config.yaml. Config never reaches the materialization core itself (§5:
// the core is pure and holds no configuration of its own).
type Config struct {
	v *viper.Viper
}

// defaults are applied before config.yaml or the environment are consulted.
var defaults = map[string]any{
	"log-level":      "info",
	"color":          true,
	"watch-interval": "2s",
	"viewer":         "",
	"board":          "",
	"snapshot-root":  "",
}

// Load builds a Config from config.yaml at configPath layered under
// SKYBOARD_*-prefixed environment variables. A missing config.yaml is not
// an error: defaults and the environment still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("SKYBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
			}
		}
	}

	return &Config{v: v}, nil
}

// LogLevel parses the configured log level into a slog.Level, defaulting to
// Info on an unrecognized value.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.v.GetString("log-level")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Color reports whether terminal output should use ANSI color.
func (c *Config) Color() bool { return c.v.GetBool("color") }

// WatchInterval is the configured watch-interval duration. The watch
// subcommand does not read it: change detection relies on fsnotify events
// alone, with no polling fallback.
func (c *Config) WatchInterval() time.Duration {
	return c.v.GetDuration("watch-interval")
}

// Viewer is the configured party identifier, empty if unset.
func (c *Config) Viewer() string { return c.v.GetString("viewer") }

// Board is the configured default board URI, empty if unset.
func (c *Config) Board() string { return c.v.GetString("board") }

// SnapshotRoot is the configured snapshot-root value, empty if unset. The
// snapshot loader does not read it; party directories come from repos.yaml.
func (c *Config) SnapshotRoot() string { return c.v.GetString("snapshot-root") }
