package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitiateSTKPush(ctx context.Context, req *domain.STKPushRequest) (*domain.STKPushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.STKPushResponse), args.Error(1)
}

func (m *MockPaymentGateway) QueryTransaction(ctx context.Context, externalID string) (string, error) {
	args := m.Called(ctx, externalID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) RegisterWebhook(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
