package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ToneGuard/ToneGuard/pkg/app/analyzer"
	"github.com/ToneGuard/ToneGuard/pkg/domain/analysis"
)

type AnalyzeText struct {
	mock.Mock
}

func (m *AnalyzeText) Analyze(ctx context.Context, req analyzer.Request) (*analysis.ModerationResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*analysis.ModerationResult)
	return result, args.Error(1)
}
