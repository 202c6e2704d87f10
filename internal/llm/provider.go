// Package llm provides a unified interface for the language-model backends
// TickerLens uses for article summaries, sentiment tags, and the narrative
// financial summary (OpenAI-compatible APIs and local Ollama).
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names for configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey     = errors.New("llm: API key not configured")
	ErrRateLimit    = errors.New("llm: rate limit exceeded")
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrNoProviders  = errors.New("llm: no provider configured")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM.
type Response struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Latency  time.Duration `json:"latency"`
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Provider is the interface all LLM backends implement. Calls are
// best-effort and never retried by callers; a failure is absorbed into a
// sentinel value at the call site.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string

	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// Ping checks if the provider is reachable and the API key is valid.
	Ping(ctx context.Context) error
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	OpenAIKey   string
	OllamaURL   string
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewFromConfig builds the configured provider. Returns ErrNoProviders when
// nothing usable is configured; callers treat that as "degrade to
// sentinels", not as a startup failure.
func NewFromConfig(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []OpenAIOption{}
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
		}
		return NewOpenAIProvider(cfg.OpenAIKey, opts...)
	case ProviderOllama:
		opts := []OllamaOption{}
		if cfg.Model != "" {
			opts = append(opts, WithOllamaModel(cfg.Model))
		}
		return NewOllamaProvider(cfg.OllamaURL, opts...), nil
	case "":
		// Auto-select: OpenAI when a key is present, otherwise nothing.
		if cfg.OpenAIKey != "" {
			return NewOpenAIProvider(cfg.OpenAIKey)
		}
		return nil, ErrNoProviders
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
