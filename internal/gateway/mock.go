package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saccotech/sacco-engine/internal/domain"
)

// MockGateway stands in for Daraja when no credentials are configured. It
// accepts every push and reports even-length transaction ids as settled,
// which gives reconciliation tests both outcomes to work with.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) InitiateSTKPush(_ context.Context, _ *domain.STKPushRequest) (*domain.STKPushResponse, error) {
	return &domain.STKPushResponse{
		RequestID: fmt.Sprintf("REQ-%s", uuid.NewString()[:8]),
		Status:    domain.PaymentStatusPending,
		Provider:  domain.PaymentProviderMpesa,
	}, nil
}

func (g *MockGateway) QueryTransaction(_ context.Context, externalID string) (string, error) {
	if len(externalID)%2 == 0 {
		return domain.PaymentStatusSuccess, nil
	}
	return domain.PaymentStatusPending, nil
}

func (g *MockGateway) RegisterWebhook(_ context.Context, _ string) error {
	return nil
}
