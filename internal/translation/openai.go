package translation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator requests text completions from an OpenAI-compatible
// server hosting the checkpoint, such as a vLLM or TGI deployment.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a generator for the server at baseURL. An
// empty baseURL targets the OpenAI API.
func NewOpenAIGenerator(baseURL, token string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg)}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Generation, error) {
	creq := openai.CompletionRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxLength,
		Temperature: 0,
		N:           1,
	}
	if req.NumBeams > 1 {
		creq.BestOf = req.NumBeams
	}

	resp, err := g.client.CreateCompletion(ctx, creq)
	if err != nil {
		return Generation{}, fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Generation{}, fmt.Errorf("no completion returned")
	}
	return Generation{Text: resp.Choices[0].Text}, nil
}
