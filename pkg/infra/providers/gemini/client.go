package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

const DefaultModel = "gemini-2.0-flash"

type client struct {
	clientPool *sync.Map
}

func NewGeminiClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Rephrase(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, domain.NewMissingCredentialError("Gemini API key")
	}

	genaiClient, err := c.getOrCreateClient(ctx, config.Credentials.ApiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	genConfig := &genai.GenerateContentConfig{}
	if config.Temperature > 0 {
		temp := float32(config.Temperature)
		genConfig.Temperature = &temp
	}
	if config.TopP > 0 {
		topP := float32(config.TopP)
		genConfig.TopP = &topP
	}
	if config.MaxNewTokens > 0 {
		genConfig.MaxOutputTokens = int32(config.MaxNewTokens)
	}

	result, err := genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := strings.TrimSpace(result.Text())
	if responseText == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	resp := &providers.CompletionResponse{
		ID:       fmt.Sprintf("gemini-%s", model),
		Model:    model,
		Response: responseText,
	}
	if result.UsageMetadata != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cached, ok := v.(*genai.Client); ok {
			return cached, nil
		}
	}
	created, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c.clientPool.Store(apiKey, created)
	return created, nil
}
