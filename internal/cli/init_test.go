package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recommend/config"
)

func TestInitCommandWritesDefaults(t *testing.T) {
	dir := t.TempDir()

	if err := executeCommand(t, initCmd, "init", "-d", dir); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, "recommend.yaml"))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Retrieve.TopK != config.DefaultConfig().Retrieve.TopK {
		t.Errorf("expected default top_k, got %d", cfg.Retrieve.TopK)
	}
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recommend.yaml")
	if err := os.WriteFile(path, []byte("retrieve:\n  top_k: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := executeCommand(t, initCmd, "init", "-d", dir)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected an already exists error, got %v", err)
	}
}

func TestInitCommandForceReplacesInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recommend.yaml")
	if err := os.WriteFile(path, []byte("retrieve:\n  top_k: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := executeCommand(t, initCmd, "init", "--force", "-d", dir); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("rewritten config does not load: %v", err)
	}
}
