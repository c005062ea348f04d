package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"hyperchat/internal/config"
)

// Embedder turns text into fixed-dimensionality vectors. Satisfied by
// langchaingo's EmbedderImpl; tests substitute deterministic fakes.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder builds an embedder for the configured provider.
func NewEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return newOllamaEmbedder(cfg)
	case "openai", "":
		return newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func newOpenAIEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing embedding LLM: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return embedder, nil
}

func newOllamaEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).
		Msg("Creating ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing embedding LLM: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return embedder, nil
}
