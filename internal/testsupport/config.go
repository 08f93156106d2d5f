// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"loadfinder/internal/config"
)

// NewConfig returns a validated configuration rooted in a temporary
// directory so tests never touch real state.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DBPath = filepath.Join(base, "loads.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ingest.FeedPath = filepath.Join(base, "feed.json")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return &cfg
}
