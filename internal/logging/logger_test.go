package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liner/internal/config"
	"liner/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "liner.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected JSON log line, got %q", string(data))
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}

func TestComponentLoggerNilBase(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "store")
	logger.Info("noop")
}
