package mocks

import (
	"context"

	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
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

func (m *MockClient) CreateCheckoutSession(ctx context.Context, req *stripeClient.SessionRequest) (*stripeClient.CheckoutSession, error) {
	args := m.Called(ctx, req)
	cs, _ := args.Get(0).(*stripeClient.CheckoutSession)

	return cs, args.Error(1)
}

func (m *MockClient) GetCheckoutSession(ctx context.Context, sessionID string) (*stripeClient.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	cs, _ := args.Get(0).(*stripeClient.CheckoutSession)

	return cs, args.Error(1)
}

func (m *MockClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
