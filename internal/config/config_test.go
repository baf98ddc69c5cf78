package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"REDLINE_PROVIDER", "ANTHROPIC_MODEL", "OPENAI_MODEL", "GEMINI_MODEL",
		"REQUEST_TIMEOUT", "MAX_RETRIES", "MAX_CONCURRENT",
		"REDLINE_AUTHOR", "EDIT_ABSTRACT", "SKIP_SHORT_LINES",
		"PORT", "MAX_UPLOAD_BYTES", "MAX_QUEUE_SIZE", "WORKER_COUNT", "JOB_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", cfg.OpenAIModel)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v, want 120s", cfg.RequestTimeout)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", cfg.MaxConcurrent)
	}
	if cfg.EditAbstract {
		t.Error("EditAbstract should default to false")
	}
	if cfg.SkipShortLines {
		t.Error("SkipShortLines should default to false")
	}
	if cfg.Author != "redline" {
		t.Errorf("Author = %q, want redline", cfg.Author)
	}
	if cfg.Port != "8091" {
		t.Errorf("Port = %q, want 8091", cfg.Port)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REDLINE_PROVIDER", "openai")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("MAX_CONCURRENT", "4")
	t.Setenv("EDIT_ABSTRACT", "true")
	t.Setenv("REQUEST_TIMEOUT", "30s")

	cfg := Load()
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.OpenAIModel != "gpt-4.1" {
		t.Errorf("OpenAIModel = %q, want gpt-4.1", cfg.OpenAIModel)
	}
	if cfg.MaxConcurrent != 4 {
		t.Errorf("MaxConcurrent = %d, want 4", cfg.MaxConcurrent)
	}
	if !cfg.EditAbstract {
		t.Error("EditAbstract should be true")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
}

func TestLoadClampsInvalid(t *testing.T) {
	t.Setenv("MAX_CONCURRENT", "-3")
	t.Setenv("MAX_RETRIES", "-1")
	t.Setenv("WORKER_COUNT", "0")

	cfg := Load()
	if cfg.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want clamp to 1", cfg.MaxConcurrent)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want clamp to 0", cfg.MaxRetries)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d, want clamp to 2", cfg.WorkerCount)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic with key", Config{Provider: "anthropic", AnthropicAPIKey: "sk-x"}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"openai with key", Config{Provider: "openai", OpenAIAPIKey: "sk-x"}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", GeminiAPIKey: "x"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg := Config{Provider: "anthropic", AnthropicAPIKey: "sk-x"}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error without service API key")
	}
	cfg.APIKey = "secret"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("ValidateServe() = %v", err)
	}
}

func TestMergeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.yaml")
	yaml := `
provider: gemini
author: "J. Reviewer"
instruction: "Fix grammar only."
edit_abstract: true
max_concurrent: 8
max_retries: 0
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{Provider: "anthropic", Author: "redline", MaxRetries: 2, MaxConcurrent: 1}
	if err := cfg.MergeFile(path); err != nil {
		t.Fatalf("MergeFile: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Author != "J. Reviewer" {
		t.Errorf("Author = %q", cfg.Author)
	}
	if cfg.Instruction != "Fix grammar only." {
		t.Errorf("Instruction = %q", cfg.Instruction)
	}
	if !cfg.EditAbstract {
		t.Error("EditAbstract should be true")
	}
	if cfg.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", cfg.MaxConcurrent)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
}

func TestMergeFileKeepsUnsetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redline.yaml")
	if err := os.WriteFile(path, []byte("author: someone\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{Provider: "openai", MaxConcurrent: 3, SkipShortLines: true}
	if err := cfg.MergeFile(path); err != nil {
		t.Fatalf("MergeFile: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai kept", cfg.Provider)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3 kept", cfg.MaxConcurrent)
	}
	if !cfg.SkipShortLines {
		t.Error("SkipShortLines should stay true")
	}
}

func TestMergeFileErrors(t *testing.T) {
	cfg := Config{}
	if err := cfg.MergeFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("provider: [not: valid"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := cfg.MergeFile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
