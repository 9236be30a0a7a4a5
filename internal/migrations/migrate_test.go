package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000012_add_index.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if got := LatestVersion(dir); got != 12 {
		t.Errorf("expected version 12, got %d", got)
	}
	if got := LatestVersion(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing dir should report 0, got %d", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", DefaultDir); err == nil {
		t.Errorf("expected error for empty database URL")
	}
}
