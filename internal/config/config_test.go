package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"TICKERLENS_MARKETDATA_API_KEY", "TICKERLENS_NEWS_API_KEY", "TICKERLENS_LLM_OPENAI_KEY",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LLM.Provider != "" {
		t.Errorf("LLM.Provider: got %q, want auto-select", cfg.LLM.Provider)
	}
	if cfg.LLM.OllamaURL != "http://localhost:11434" {
		t.Errorf("LLM.OllamaURL: got %q", cfg.LLM.OllamaURL)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("LLM.Temperature: got %f, want 0.2", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("LLM.MaxTokens: got %d, want 1024", cfg.LLM.MaxTokens)
	}

	if cfg.MarketData.APIKey != "" {
		t.Errorf("MarketData.APIKey: got %q, want empty (demo mode)", cfg.MarketData.APIKey)
	}
	if cfg.News.APIKey != "" {
		t.Errorf("News.APIKey: got %q, want empty (fallback mode)", cfg.News.APIKey)
	}

	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr(): got %q", cfg.API.Addr())
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
marketdata:
  api_key: "av-test-key"
news:
  api_key: "news-test-key"
llm:
  provider: "ollama"
  model: "llama3.2"
  temperature: 0.5
  max_tokens: 2048
api:
  port: 9090
  cors_origins:
    - "https://dash.example.com"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Unsetenv("TICKERLENS_MARKETDATA_API_KEY")
	os.Unsetenv("TICKERLENS_NEWS_API_KEY")
	os.Unsetenv("TICKERLENS_LLM_OPENAI_KEY")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.MarketData.APIKey != "av-test-key" {
		t.Errorf("MarketData.APIKey: got %q", cfg.MarketData.APIKey)
	}
	if cfg.News.APIKey != "news-test-key" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("LLM.Provider: got %q, want %q", cfg.LLM.Provider, "ollama")
	}
	if cfg.LLM.Model != "llama3.2" {
		t.Errorf("LLM.Model: got %q, want %q", cfg.LLM.Model, "llama3.2")
	}
	if cfg.LLM.Temperature != 0.5 {
		t.Errorf("LLM.Temperature: got %f, want 0.5", cfg.LLM.Temperature)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "https://dash.example.com" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	os.Setenv("TICKERLENS_MARKETDATA_API_KEY", "av-env-key")
	os.Setenv("TICKERLENS_NEWS_API_KEY", "news-env-key")
	os.Setenv("TICKERLENS_LLM_OPENAI_KEY", "sk-test-openai-key")
	defer func() {
		os.Unsetenv("TICKERLENS_MARKETDATA_API_KEY")
		os.Unsetenv("TICKERLENS_NEWS_API_KEY")
		os.Unsetenv("TICKERLENS_LLM_OPENAI_KEY")
	}()

	overrideFromEnv(cfg)

	if cfg.MarketData.APIKey != "av-env-key" {
		t.Errorf("MarketData.APIKey: got %q", cfg.MarketData.APIKey)
	}
	if cfg.News.APIKey != "news-env-key" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
	if cfg.LLM.OpenAIKey != "sk-test-openai-key" {
		t.Errorf("LLM.OpenAIKey: got %q", cfg.LLM.OpenAIKey)
	}
}

func TestOverrideFromEnvLeavesExistingValues(t *testing.T) {
	os.Unsetenv("TICKERLENS_MARKETDATA_API_KEY")
	cfg := &Config{MarketData: MarketDataConfig{APIKey: "from-file"}}
	overrideFromEnv(cfg)
	if cfg.MarketData.APIKey != "from-file" {
		t.Errorf("MarketData.APIKey: got %q, want file value preserved", cfg.MarketData.APIKey)
	}
}
