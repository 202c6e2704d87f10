// Package config handles configuration loading for TickerLens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	MarketData MarketDataConfig `mapstructure:"marketdata" yaml:"marketdata"`
	News       NewsConfig       `mapstructure:"news"       yaml:"news"`
	LLM        LLMConfig        `mapstructure:"llm"        yaml:"llm"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
}

// MarketDataConfig holds the quotes/fundamentals provider credential.
// An empty key is valid: the service degrades to the synthetic demo set.
type MarketDataConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// NewsConfig holds the news provider credential. An empty key is valid:
// the service serves the static fallback articles.
type NewsConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // "openai", "ollama", or "" for auto
	OpenAIKey   string  `mapstructure:"openai_key"  yaml:"openai_key"`
	OllamaURL   string  `mapstructure:"ollama_url"  yaml:"ollama_url"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the listen address in host:port form.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerlens/config.yaml (home directory)
//  3. /etc/tickerlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: TICKERLENS_<SECTION>_<KEY>, e.g., TICKERLENS_LLM_OPENAI_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerlens"))
	v.AddConfigPath("/etc/tickerlens")

	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not existing is fine, defaults + env vars carry the day.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("TICKERLENS_MARKETDATA_API_KEY"); key != "" {
		cfg.MarketData.APIKey = key
	}
	if key := os.Getenv("TICKERLENS_NEWS_API_KEY"); key != "" {
		cfg.News.APIKey = key
	}
	if key := os.Getenv("TICKERLENS_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
