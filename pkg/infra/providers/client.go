package providers

import (
	"context"
)

// Config carries per-call generation settings. Credentials are resolved by
// the caller; providers never read the environment themselves.
type Config struct {
	Credentials  Credentials `json:"credentials"`
	Model        string      `json:"model"`
	Endpoint     string      `json:"endpoint,omitempty"` // huggingface inference URL override
	Region       string      `json:"region,omitempty"`   // bedrock only
	MaxNewTokens int         `json:"max_new_tokens,omitempty"`
	Temperature  float64     `json:"temperature,omitempty"`
	TopP         float64     `json:"top_p,omitempty"`
}

type Credentials struct {
	ApiKey string `json:"api_key"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter

// Client generates a rephrased rendition of the prompt's subject text.
type Client interface {
	Rephrase(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}
