// ABOUTME: Tests for logger setup
// ABOUTME: Checks level parsing and file routing
package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/sirupsen/logrus"
)

func TestInitSetsLevel(t *testing.T) {
	Init(config.LoggingConfig{Level: "debug"}, false)
	if L().GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", L().GetLevel())
	}
}

func TestInitBadLevelFallsBack(t *testing.T) {
	Init(config.LoggingConfig{Level: "shouting"}, false)
	if L().GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info fallback, got %s", L().GetLevel())
	}
}

func TestInitFileOnlyWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	Init(config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1, MaxAge: 1}, true)

	L().Info("hello from the test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output in file")
	}
}
