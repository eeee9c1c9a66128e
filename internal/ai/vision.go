package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const extractionPrompt = "Transcribe all readable text from this image exactly as written. " +
	"Return only the transcribed text. If nothing is readable, return an empty response."

// OpenAIVision extracts text from images through the vision-capable chat
// completion API. It answers the text-from-image contract: empty string, nil
// error when the image simply has no readable text.
type OpenAIVision struct {
	client *openai.Client
	model  string
}

// NewOpenAIVision constructs the vision extraction client.
func NewOpenAIVision() *OpenAIVision {
	model := os.Getenv("OPENAI_VISION_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIVision{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

// ExtractText sends the image inline as a data URL and returns the
// transcription.
func (v *OpenAIVision) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	if v.client == nil {
		return "", errors.New("vision client not initialized")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
