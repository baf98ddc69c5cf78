package correct

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	instruction string
}

func NewGeminiClient(ctx context.Context, apiKey, model, instruction string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		model:       model,
		instruction: instruction,
	}, nil
}

func (c *GeminiClient) Correct(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(c.instruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.1),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini api: %w", err)
	}

	out := resp.Text()
	if out == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return Postprocess(out), nil
}

// Close releases resources. The SDK holds no long-lived connections.
func (c *GeminiClient) Close() {}
