package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator is the narrow capability the pipeline expects from the
// generation backend: a schema-bearing prompt plus raw document text in,
// text out. Implementations must not retry on their own.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, document string) (string, error)
}

// GeminiClient implements Generator on top of the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: c, model: "gemini-2.0-flash"}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) Generate(ctx context.Context, systemPrompt, document string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	// Temperature 0 for deterministic extraction.
	model.SetTemperature(0.0)

	resp, err := model.GenerateContent(ctx, genai.Text(systemPrompt), genai.Text(document))
	if err != nil {
		return "", fmt.Errorf("error calling Gemini API: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	content, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini API")
	}
	return string(content), nil
}

// CleanJSONResponse removes markdown code block markers from a JSON string.
// This handles cases where the model returns JSON wrapped in ```json ... ```.
func CleanJSONResponse(jsonStr string) string {
	jsonStr = strings.TrimPrefix(strings.TrimSpace(jsonStr), "```json")
	jsonStr = strings.TrimPrefix(strings.TrimSpace(jsonStr), "```")
	jsonStr = strings.TrimSuffix(strings.TrimSpace(jsonStr), "```")
	return strings.TrimSpace(jsonStr)
}
