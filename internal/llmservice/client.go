// Package llmservice is the canonical boundary to the generative
// model: given a message, a system prompt, and filtered history, it
// returns the generated text or fails.
package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"hyperchat/internal/config"
	"hyperchat/internal/models"
)

// ChatRequest carries one model invocation. History entries with blank
// content must already have been filtered out by the normalizer.
type ChatRequest struct {
	Model       string
	System      string
	Message     string
	History     []models.ChatTurn
	MaxTokens   int
	Temperature float64
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	llm *openai.LLM
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Chat invokes the model once and returns the generated text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", fmt.Errorf("current user message cannot be empty or whitespace")
	}

	var messages []llms.MessageContent
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, turn := range req.History {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, message))

	log.Debug().Str("model", req.Model).Int("messages", len(messages)).
		Msg("Generating content")

	res, err := c.llm.GenerateContent(ctx, messages,
		llms.WithModel(req.Model),
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Content), nil
}
