package bedrock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

const DefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"

// client talks to Bedrock through the Converse API. Credentials come from
// the standard AWS chain, not from providers.Credentials.
type client struct {
	runtimePool *sync.Map
}

func NewBedrockClient() providers.Client {
	return &client{
		runtimePool: &sync.Map{},
	}
}

func (c *client) Rephrase(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}

	runtime, err := c.getOrCreateRuntime(ctx, config.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bedrock runtime: %w", err)
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	inferenceConfig := &types.InferenceConfiguration{}
	if config.MaxNewTokens > 0 {
		inferenceConfig.MaxTokens = aws.Int32(int32(config.MaxNewTokens))
	}
	if config.Temperature > 0 {
		inferenceConfig.Temperature = aws.Float32(float32(config.Temperature))
	}
	if config.TopP > 0 {
		inferenceConfig.TopP = aws.Float32(float32(config.TopP))
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: inferenceConfig,
	}

	resp, err := runtime.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock request failed: %w", err)
	}

	output, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected bedrock output type %T", resp.Output)
	}

	var responseText string
	for _, block := range output.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			responseText = text.Value
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text content returned")
	}

	completion := &providers.CompletionResponse{
		ID:       model,
		Model:    model,
		Response: responseText,
	}
	if resp.Usage != nil {
		completion.Usage = providers.Usage{
			PromptTokens:     int(aws.ToInt32(resp.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(resp.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(resp.Usage.TotalTokens)),
		}
	}

	return completion, nil
}

func (c *client) getOrCreateRuntime(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	if v, ok := c.runtimePool.Load(region); ok {
		if cached, ok := v.(*bedrockruntime.Client); ok {
			return cached, nil
		}
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	created := bedrockruntime.NewFromConfig(cfg)
	c.runtimePool.Store(region, created)
	return created, nil
}
