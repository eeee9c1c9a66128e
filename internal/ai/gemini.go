package ai

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// GeminiBackend is the secondary completion provider, reached through
// Gemini's OpenAI-compatible endpoint so both providers share one client
// library and one request shape.
type GeminiBackend struct {
	client *openai.Client
	model  string
}

// NewGeminiBackend constructs the Gemini-backed completion client. Accepts
// GEMINI_API_KEY or GOOGLE_API_KEY, matching how keys tend to be provisioned.
func NewGeminiBackend() *GeminiBackend {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = geminiOpenAIBaseURL

	return &GeminiBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *GeminiBackend) Name() string { return "gemini" }

// Complete mirrors OpenAIBackend.Complete against the Gemini endpoint.
func (b *GeminiBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	if b.client == nil {
		return "", errors.New("gemini client not initialized")
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
