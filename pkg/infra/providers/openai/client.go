package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

const DefaultModel = "gpt-4o-mini"

type client struct {
	clientPool *sync.Map
}

func NewOpenaiClient() providers.Client {
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
		return nil, domain.NewMissingCredentialError("OpenAI API key")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	openaiClient := c.getOrCreateClient(config.Credentials.ApiKey)

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	if config.MaxNewTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxNewTokens))
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = openai.Float(config.TopP)
	}

	resp, err := openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) openai.Client {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cached, ok := v.(openai.Client); ok {
			return cached
		}
	}
	created := openai.NewClient(option.WithAPIKey(apiKey))
	c.clientPool.Store(apiKey, created)
	return created
}
