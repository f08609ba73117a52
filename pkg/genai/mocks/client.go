package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/pkg/genai"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockClient) Complete(ctx context.Context, messages []genai.Message, maxTokens int) (string, error) {
	args := m.Called(ctx, messages, maxTokens)

	return args.String(0), args.Error(1)
}
