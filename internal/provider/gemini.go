package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Compile-time check.
var _ Provider = (*GeminiClient)(nil)

// GeminiClient generates images through the Google GenAI API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a GenAI-backed image provider.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate submits the prompt and returns the first inline image part of
// the response. Rate-limit failures surface as genai API errors with a
// 429 code, which IsRateLimitError recognizes directly.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (*Image, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents,
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE"},
		})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Image{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
					Provider: "gemini",
					Model:    g.model,
				}, nil
			}
		}
	}

	return nil, fmt.Errorf("gemini: no image in response")
}
