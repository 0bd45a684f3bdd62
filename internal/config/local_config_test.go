package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLocalConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}
}

func TestLoadLocalConfigMissingFileReturnsEmpty(t *testing.T) {
	cfg := LoadLocalConfig(t.TempDir())
	if cfg == nil {
		t.Fatal("expected non-nil LocalConfig even when file is missing")
	}
	if cfg.Viewer != "" {
		t.Fatalf("expected empty viewer, got %q", cfg.Viewer)
	}
}

func TestLoadLocalConfigParsesFile(t *testing.T) {
	dir := t.TempDir()
	writeLocalConfig(t, dir, "viewer: did:alice\ndefault-board-uri: at://did:alice/board/b1\n")

	cfg := LoadLocalConfig(dir)
	if cfg.Viewer != "did:alice" {
		t.Fatalf("expected viewer did:alice, got %q", cfg.Viewer)
	}
	if cfg.DefaultBoardURI != "at://did:alice/board/b1" {
		t.Fatalf("expected parsed default-board-uri, got %q", cfg.DefaultBoardURI)
	}
}

func TestLoadLocalConfigWithEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeLocalConfig(t, dir, "viewer: did:alice\n")

	t.Setenv("SKYBOARD_VIEWER", "did:bob")
	cfg := LoadLocalConfigWithEnv(dir)
	if cfg.Viewer != "did:bob" {
		t.Fatalf("expected env override did:bob, got %q", cfg.Viewer)
	}
}

func TestGetLocalViewerConveniencePassthrough(t *testing.T) {
	dir := t.TempDir()
	writeLocalConfig(t, dir, "viewer: did:carol\n")

	if got := GetLocalViewer(dir); got != "did:carol" {
		t.Fatalf("expected did:carol, got %q", got)
	}
}
