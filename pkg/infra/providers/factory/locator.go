package factory

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/infra/httpx"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/anthropic"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/bedrock"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/gemini"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/huggingface"
	"github.com/ToneGuard/ToneGuard/pkg/infra/providers/openai"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderBedrock     = "bedrock"
)

//go:generate mockery --name=ProviderLocator --dir=. --output=./mocks --filename=provider_locator_mock.go --case=underscore --with-expecter

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	logger     *logrus.Logger
	httpClient httpx.Client
	breaker    httpx.CircuitBreaker
}

func NewProviderLocator(
	logger *logrus.Logger,
	httpClient httpx.Client,
	breaker httpx.CircuitBreaker,
) ProviderLocator {
	return &providerLocator{
		logger:     logger,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	switch provider {
	case ProviderHuggingFace:
		return huggingface.NewClient(f.logger, f.httpClient, f.breaker), nil
	case ProviderOpenAI:
		return openai.NewOpenaiClient(), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicClient(), nil
	case ProviderGemini:
		return gemini.NewGeminiClient(), nil
	case ProviderBedrock:
		return bedrock.NewBedrockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
