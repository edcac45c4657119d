package ollama

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kart-io/teamsync/pkg/llm"
)

func newTestProvider(baseURL string) *Provider {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 0
	return NewProviderWithConfig(cfg)
}

func TestNewProviderConfigMap(t *testing.T) {
	p, err := NewProvider(map[string]any{
		"base_url":    "http://ollama.internal:11434",
		"embed_model": "mxbai-embed-large",
		"chat_model":  "llama3.2",
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	provider, ok := p.(*Provider)
	if !ok {
		t.Fatalf("unexpected provider type %T", p)
	}
	if provider.config.BaseURL != "http://ollama.internal:11434" {
		t.Errorf("unexpected base url: %s", provider.config.BaseURL)
	}
	if provider.config.EmbedModel != "mxbai-embed-large" {
		t.Errorf("unexpected embed model: %s", provider.config.EmbedModel)
	}
	if provider.config.ChatModel != "llama3.2" {
		t.Errorf("unexpected chat model: %s", provider.config.ChatModel)
	}
}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"model":"nomic-embed-text"`) {
			t.Errorf("request missing embed model: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "nomic-embed-text",
			"embeddings": [[0.1, 0.2], [0.3, 0.4]]
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	embeddings, err := p.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	if embeddings[0][0] != 0.1 || embeddings[1][0] != 0.3 {
		t.Errorf("unexpected embeddings: %v", embeddings)
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	p := newTestProvider("http://unused")
	embeddings, err := p.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if embeddings != nil {
		t.Errorf("expected nil embeddings for empty input")
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings": [[0.1]]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Embed(context.Background(), []string{"alpha", "beta"})
	if err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
}

func TestEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings": [[0.5, 0.6, 0.7]]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	vector, err := p.EmbedSingle(context.Background(), "what are my tasks")
	if err != nil {
		t.Fatalf("EmbedSingle failed: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.5 {
		t.Errorf("unexpected vector: %v", vector)
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"stream":false`) {
			t.Errorf("expected non-streaming request: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "llama3.1",
			"message": {"role": "assistant", "content": "hello there"},
			"done": true
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	got, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "hello there" {
		t.Errorf("unexpected content: %s", got)
	}
}

func TestGenerateReportsTokenUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "llama3.1",
			"response": "answer",
			"done": true,
			"prompt_eval_count": 20,
			"eval_count": 5
		}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Generate(context.Background(), "question", "you are helpful")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "answer" {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.TokenUsage == nil || resp.TokenUsage.TotalTokens != 25 {
		t.Errorf("unexpected token usage: %+v", resp.TokenUsage)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}
