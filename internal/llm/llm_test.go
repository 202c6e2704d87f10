package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestOpenAIChat(t *testing.T) {
	var gotAuth string
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "All clear."}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("test-key", WithOpenAIBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Chat(context.Background(), []Message{
		SystemMessage("You are terse."),
		UserMessage("Status?"),
	}, &ChatOptions{Temperature: 0.2, MaxTokens: 100})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if resp.Content != "All clear." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Provider != ProviderOpenAI {
		t.Errorf("provider = %q", resp.Provider)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("unexpected messages payload: %+v", gotReq.Messages)
	}
	if gotReq.Temperature != 0.2 || gotReq.MaxTokens != 100 {
		t.Errorf("options not forwarded: %+v", gotReq)
	}
}

func TestOpenAIChatRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider("test-key", WithOpenAIBaseURL(srv.URL))
	if _, err := p.Chat(context.Background(), []Message{UserMessage("hi")}, nil); !errors.Is(err, ErrRateLimit) {
		t.Fatalf("error = %v, want ErrRateLimit", err)
	}
}

func TestOpenAIChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "model not found", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	p, _ := NewOpenAIProvider("test-key", WithOpenAIBaseURL(srv.URL))
	_, err := p.Chat(context.Background(), []Message{UserMessage("hi")}, nil)
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("error = %v, want API error message surfaced", err)
	}
}

func TestOpenAIPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "Bearer bad-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	good, _ := NewOpenAIProvider("test-key", WithOpenAIBaseURL(srv.URL))
	if err := good.Ping(context.Background()); err != nil {
		t.Errorf("ping with valid key failed: %v", err)
	}

	bad, _ := NewOpenAIProvider("bad-key", WithOpenAIBaseURL(srv.URL))
	if err := bad.Ping(context.Background()); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestOllamaChat(t *testing.T) {
	var gotReq ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:   "llama3.2",
			Message: ollamaMessage{Role: "assistant", Content: "Done."},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL)
	resp, err := p.Chat(context.Background(), []Message{UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "Done." {
		t.Errorf("content = %q", resp.Content)
	}
	if gotReq.Stream {
		t.Error("stream must be disabled")
	}
}

func TestOllamaChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Error: "model 'nope' not found"})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL)
	_, err := p.Chat(context.Background(), []Message{UserMessage("hi")}, nil)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error = %v, want ollama error surfaced", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	p, err := NewFromConfig(Config{Provider: ProviderOpenAI, OpenAIKey: "k", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("openai config failed: %v", err)
	}
	if p.Name() != ProviderOpenAI {
		t.Errorf("name = %q", p.Name())
	}

	p, err = NewFromConfig(Config{Provider: ProviderOllama})
	if err != nil {
		t.Fatalf("ollama config failed: %v", err)
	}
	if p.Name() != ProviderOllama {
		t.Errorf("name = %q", p.Name())
	}

	if _, err := NewFromConfig(Config{}); !errors.Is(err, ErrNoProviders) {
		t.Errorf("empty config error = %v, want ErrNoProviders", err)
	}

	if p, err := NewFromConfig(Config{OpenAIKey: "k"}); err != nil || p.Name() != ProviderOpenAI {
		t.Errorf("auto-select = (%v, %v), want openai", p, err)
	}

	if _, err := NewFromConfig(Config{Provider: "gemini"}); err == nil {
		t.Error("unknown provider must error")
	}
}
