package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/ToneGuard/ToneGuard/pkg/infra/providers"
)

type ProviderLocator struct {
	mock.Mock
}

func (m *ProviderLocator) Get(provider string) (providers.Client, error) {
	args := m.Called(provider)
	client, _ := args.Get(0).(providers.Client)
	return client, args.Error(1)
}
