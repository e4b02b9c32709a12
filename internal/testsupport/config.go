package testsupport

import (
	"path/filepath"
	"testing"

	"liner/internal/config"
)

// NewConfig returns a validated config rooted in a temp directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config.Validate: %v", err)
	}
	return &cfg
}
