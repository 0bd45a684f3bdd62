package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigYaml(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("expected default log level info, got %v", cfg.LogLevel())
	}
	if !cfg.Color() {
		t.Fatal("expected color to default to true")
	}
	if cfg.WatchInterval() != 2*time.Second {
		t.Fatalf("expected default watch interval 2s, got %v", cfg.WatchInterval())
	}
}

func TestLoadReadsConfigYaml(t *testing.T) {
	path := writeConfigYaml(t, "log-level: debug\ncolor: false\nboard: at://did:alice/board/b1\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel())
	}
	if cfg.Color() {
		t.Fatal("expected color false from config file")
	}
	if cfg.Board() != "at://did:alice/board/b1" {
		t.Fatalf("expected configured board uri, got %q", cfg.Board())
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigYaml(t, "log-level: debug\n")
	t.Setenv("SKYBOARD_LOG_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Fatalf("expected env override to win, got %v", cfg.LogLevel())
	}
}

func TestLoadUnrecognizedLogLevelFallsBackToInfo(t *testing.T) {
	path := writeConfigYaml(t, "log-level: verbose\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("expected fallback to info, got %v", cfg.LogLevel())
	}
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected missing config file to be tolerated, got %v", err)
	}
}
