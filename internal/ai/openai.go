package ai

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend is the primary completion provider.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend constructs the OpenAI-backed completion client. The API
// key and model come from the environment, with a small default model.
func NewOpenAIBackend() *OpenAIBackend {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIBackend{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

// Complete sends a system+user prompt pair to the chat completion API and
// returns the trimmed assistant reply.
func (b *OpenAIBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	if b.client == nil {
		return "", errors.New("openai client not initialized")
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
