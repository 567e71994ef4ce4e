package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Chunk.Size != 200 || cfg.Chunk.Overlap != 40 {
		t.Errorf("chunk = %d/%d", cfg.Chunk.Size, cfg.Chunk.Overlap)
	}
	if cfg.Search.TopK != 5 {
		t.Errorf("top_k = %d", cfg.Search.TopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
  read_timeout: 10s
db:
  path: /data/test.db
crawl:
  timeout: 15s
search:
  top_k: 8
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read_timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.DB.Path != "/data/test.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Search.TopK != 8 {
		t.Errorf("top_k = %d", cfg.Search.TopK)
	}
	// Unset fields still get defaults.
	if cfg.Chunk.Size != 200 {
		t.Errorf("chunk size = %d, want default 200", cfg.Chunk.Size)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.DB.Path != "/tmp/env.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("invalid log level should fail validation")
	}

	cfg = Default()
	cfg.Chunk.Size = 50
	cfg.Chunk.Overlap = 50
	if err := cfg.Validate(); err == nil {
		t.Error("overlap >= size should fail validation")
	}

	cfg = Default()
	cfg.Chunk.Strategy = "paragraphs"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown chunk strategy should fail validation")
	}

	cfg = Default()
	cfg.Chunk.Strategy = "sentences"
	if err := cfg.Validate(); err != nil {
		t.Errorf("sentences strategy should validate: %v", err)
	}
}
