package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/pkg/tryon"
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

func (m *MockClient) Submit(ctx context.Context, photo []byte, mimeType, garmentURL string) (string, error) {
	args := m.Called(ctx, photo, mimeType, garmentURL)

	return args.String(0), args.Error(1)
}

func (m *MockClient) Status(ctx context.Context, jobID string) (*tryon.Job, error) {
	args := m.Called(ctx, jobID)
	job, _ := args.Get(0).(*tryon.Job)

	return job, args.Error(1)
}
