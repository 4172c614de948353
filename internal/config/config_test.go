package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Primary != "gemini" {
		t.Errorf("LLM.Primary = %q", cfg.LLM.Primary)
	}
	if cfg.LLM.MaxRetries != 5 {
		t.Errorf("LLM.MaxRetries = %d, want 5", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.BackoffBase() != 1500*time.Millisecond {
		t.Errorf("BackoffBase = %v", cfg.LLM.BackoffBase())
	}
	if cfg.Committee.MaxRepairPasses != 2 {
		t.Errorf("MaxRepairPasses = %d, want 2", cfg.Committee.MaxRepairPasses)
	}
	if cfg.Committee.Benchmark != "SPY" {
		t.Errorf("Benchmark = %q", cfg.Committee.Benchmark)
	}
	if cfg.GitHub.ChunkSize != 60000 {
		t.Errorf("ChunkSize = %d", cfg.GitHub.ChunkSize)
	}
	if cfg.Data.Timeout() != 60*time.Second {
		t.Errorf("Data.Timeout = %v", cfg.Data.Timeout())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
llm:
  primary: openai
  model: gpt-4o-mini
  max_retries: 3
committee:
  max_repair_passes: 4
  benchmark: ""
api:
  port: 9090
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.LLM.Primary != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.LLM.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.LLM.MaxRetries)
	}
	if cfg.Committee.MaxRepairPasses != 4 {
		t.Errorf("MaxRepairPasses = %d, want 4", cfg.Committee.MaxRepairPasses)
	}
	if cfg.Committee.Benchmark != "" {
		t.Errorf("Benchmark = %q, want disabled", cfg.Committee.Benchmark)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d", cfg.API.Port)
	}
	// Unset values keep their defaults.
	if cfg.Data.StooqBaseURL != "https://stooq.com" {
		t.Errorf("StooqBaseURL = %q", cfg.Data.StooqBaseURL)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RISKDESK_LLM_GEMINI_KEY", "test-key-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.GeminiKey != "test-key-123" {
		t.Errorf("GeminiKey = %q", cfg.LLM.GeminiKey)
	}
	if err := cfg.ValidateForGeneration(); err != nil {
		t.Errorf("ValidateForGeneration: %v", err)
	}
}

func TestValidateForGenerationMissingKeys(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateForGeneration()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
