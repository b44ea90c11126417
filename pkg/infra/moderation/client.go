package moderation

import (
	"context"

	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=moderation_client_mock.go --case=underscore --with-expecter

// Client scores a piece of text for toxicity.
type Client interface {
	Analyze(ctx context.Context, text, apiKey string) (*analysis.ModerationResult, error)
}
