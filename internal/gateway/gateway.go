// Package gateway abstracts the mobile-money provider. The core only sees
// this interface; the Daraja client is a thin collaborator behind it.
package gateway

import (
	"context"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
)

// PaymentGateway is the provider-facing contract for STK push collections.
type PaymentGateway interface {
	// InitiateSTKPush asks the provider to prompt the phone for payment.
	InitiateSTKPush(ctx context.Context, req *domain.STKPushRequest) (*domain.STKPushResponse, error)

	// QueryTransaction fetches the provider-side status of a transaction.
	QueryTransaction(ctx context.Context, externalID string) (string, error)

	// RegisterWebhook points the provider's result callback at url.
	RegisterWebhook(ctx context.Context, url string) error
}

// New selects the Daraja client when credentials are configured and the mock
// gateway otherwise, so local and test runs need no provider account.
func New(cfg *config.Config) PaymentGateway {
	if cfg.Mpesa.ConsumerKey == "" {
		return NewMockGateway()
	}
	return NewDarajaGateway(cfg)
}
