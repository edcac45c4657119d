package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (s *stubProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 2, 3}, nil
}

func (s *stubProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return "ok", nil
}

func (s *stubProvider) Generate(ctx context.Context, prompt, systemPrompt string) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "ok"}, nil
}

func (s *stubProvider) Name() string { return s.name }

func TestProviderRegistry(t *testing.T) {
	RegisterProvider("stub-full", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "stub-full"}, nil
	})

	p, err := NewProvider("stub-full", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub-full", p.Name())

	_, err = NewProvider("missing", nil)
	assert.Error(t, err)
}

func TestNewEmbeddingProviderPrecedence(t *testing.T) {
	RegisterProvider("stub-both", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "full"}, nil
	})
	RegisterEmbeddingProvider("stub-both", func(config map[string]any) (EmbeddingProvider, error) {
		return &stubProvider{name: "embed-only"}, nil
	})

	p, err := NewEmbeddingProvider("stub-both", nil)
	require.NoError(t, err)
	assert.Equal(t, "embed-only", p.Name(), "dedicated factory must win")
}

func TestNewChatProviderFallsBackToFullProvider(t *testing.T) {
	RegisterProvider("stub-chat-fallback", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "full"}, nil
	})

	p, err := NewChatProvider("stub-chat-fallback", nil)
	require.NoError(t, err)
	assert.Equal(t, "full", p.Name())

	_, err = NewChatProvider("missing", nil)
	assert.Error(t, err)
}

func TestListProviders(t *testing.T) {
	RegisterProvider("stub-list", func(config map[string]any) (Provider, error) {
		return &stubProvider{name: "stub-list"}, nil
	})

	assert.Contains(t, ListProviders(), "stub-list")
}
