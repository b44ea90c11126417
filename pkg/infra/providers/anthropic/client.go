package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ToneGuard/ToneGuard/pkg/domain"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

const defaultMaxTokens = 150

type client struct {
	clientPool *sync.Map
}

func NewAnthropicClient() providers.Client {
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
		return nil, domain.NewMissingCredentialError("Anthropic API key")
	}

	anthropicClient := c.getOrCreateClient(config.Credentials.ApiKey)

	model := anthropic.ModelClaudeHaiku4_5
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}

	maxTokens := int64(config.MaxNewTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model: model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens: maxTokens,
	}

	if config.Temperature > 0 {
		params.Temperature = anthropic.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = anthropic.Float(config.TopP)
	}

	message, err := anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	var responseText string
	for _, content := range message.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content returned")
	}

	return &providers.CompletionResponse{
		ID:       message.ID,
		Model:    string(model),
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey string) anthropic.Client {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cached, ok := v.(anthropic.Client); ok {
			return cached
		}
	}
	created := anthropic.NewClient(option.WithAPIKey(apiKey))
	c.clientPool.Store(apiKey, created)
	return created
}
