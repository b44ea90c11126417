package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

type Client struct {
	mock.Mock
}

func (m *Client) Analyze(ctx context.Context, text, apiKey string) (*analysis.ModerationResult, error) {
	args := m.Called(ctx, text, apiKey)
	result, _ := args.Get(0).(*analysis.ModerationResult)
	return result, args.Error(1)
}
