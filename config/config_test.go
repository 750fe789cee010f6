package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Retrieve.TopK != 50 {
		t.Errorf("expected TopK=50, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.TopN != 10 {
		t.Errorf("expected TopN=10, got %d", cfg.Retrieve.TopN)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Rerank.Model != "bge-reranker-v2-m3" {
		t.Errorf("expected bge-reranker-v2-m3, got %s", cfg.Rerank.Model)
	}
	if cfg.Output.File != "recommendations.json" {
		t.Errorf("expected recommendations.json, got %s", cfg.Output.File)
	}
	if cfg.Retrieve.Query != DefaultQuery {
		t.Errorf("expected default query, got %q", cfg.Retrieve.Query)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/recommend.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoadExisting_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadExisting(path)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestLoadExisting_Present(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommend.yaml")
	if err := os.WriteFile(path, []byte("retrieve:\n  top_k: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadExisting(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieve.TopK != 12 {
		t.Errorf("expected top_k 12, got %d", cfg.Retrieve.TopK)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recommend.yaml")

	content := `
retrieve:
  top_k: 20
  top_n: 5
rerank:
  provider: cohere
  model: rerank-english-v3.0
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retrieve.TopK != 20 {
		t.Errorf("expected TopK=20, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.TopN != 5 {
		t.Errorf("expected TopN=5, got %d", cfg.Retrieve.TopN)
	}
	if cfg.Rerank.Provider != "cohere" {
		t.Errorf("expected cohere, got %s", cfg.Rerank.Provider)
	}
	// untouched sections keep defaults
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recommend.yaml")

	content := `
retrieve:
  top_k: 0
index:
  provider: faiss
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "retrieve.top_k") {
		t.Errorf("expected top_k error, got %v", err)
	}
	if !strings.Contains(err.Error(), "index.provider") {
		t.Errorf("expected index.provider error, got %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recommend.yml")

	content := `
output:
  file: out.json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output.File != "out.json" {
		t.Errorf("expected out.json, got %s", cfg.Output.File)
	}
}

func TestLoadFromDir_HiddenDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, ".recommend"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
retrieve:
  top_n: 3
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".recommend", "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieve.TopN != 3 {
		t.Errorf("expected TopN=3, got %d", cfg.Retrieve.TopN)
	}
}

func TestLoadFromDir_Empty(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieve.TopK != 50 {
		t.Errorf("expected defaults, got TopK=%d", cfg.Retrieve.TopK)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommend.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopN = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Retrieve.TopN != 7 {
		t.Errorf("expected TopN=7, got %d", loaded.Retrieve.TopN)
	}
}

func TestValidate_QdrantRequiresCollection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index.Provider = "qdrant"
	cfg.Index.Qdrant.Collection = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing qdrant collection")
	}
}

func TestLoad_CohereProviderDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "recommend.yaml")
	if err := os.WriteFile(configPath, []byte("rerank:\n  provider: cohere\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Rerank.Model != "rerank-english-v3.0" {
		t.Errorf("expected cohere model, got %s", cfg.Rerank.Model)
	}
	if cfg.Rerank.BaseURL != "https://api.cohere.ai" {
		t.Errorf("expected cohere endpoint, got %s", cfg.Rerank.BaseURL)
	}
}
