package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ToneGuard/ToneGuard/pkg/app/rephraser"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

type RephraseText struct {
	mock.Mock
}

func (m *RephraseText) Rephrase(ctx context.Context, req rephraser.Request) (*analysis.RephraseResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*analysis.RephraseResult)
	return result, args.Error(1)
}
