package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"liner/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Resolver.MaxDepth != 32 {
		t.Fatalf("unexpected resolver default: %d", cfg.Resolver.MaxDepth)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liner.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[logging]
format = "JSON"
level = "Debug"

[resolver]
max_depth = 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%s", exists, resolved)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
	if cfg.Resolver.MaxDepth != 8 {
		t.Fatalf("expected max_depth 8, got %d", cfg.Resolver.MaxDepth)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "liner.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liner.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestLoadRejectsBadDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "liner.toml")
	if err := os.WriteFile(path, []byte("[resolver]\nmax_depth = -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for negative max_depth")
	}
}

func TestSampleConfigNotEmpty(t *testing.T) {
	if config.SampleConfig() == "" {
		t.Fatal("embedded sample config is empty")
	}
}
