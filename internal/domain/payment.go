package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentProviderMpesa  = "MPESA"
	PaymentProviderBank   = "BANK"
	PaymentProviderManual = "MANUAL"
)

const (
	PaymentTypeContribution = "CONTRIBUTION"
	PaymentTypeRepayment    = "REPAYMENT"
	PaymentTypeDisbursement = "DISBURSEMENT"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusSuccess   = "SUCCESS"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusCancelled = "CANCELLED"
)

// PaymentTransaction tracks a mobile-money or bank payment through its
// provider lifecycle. ExternalID is the provider's transaction id and doubles
// as the idempotency key for webhook settlement.
type PaymentTransaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Provider   string          `json:"provider" db:"provider"`
	Type       string          `json:"type" db:"type"`
	Status     string          `json:"status" db:"status"`
	MemberID   *uuid.UUID      `json:"member_id,omitempty" db:"member_id"`
	LoanID     *uuid.UUID      `json:"loan_id,omitempty" db:"loan_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Currency   string          `json:"currency" db:"currency"`
	Phone      string          `json:"phone" db:"phone"`
	ExternalID string          `json:"external_id" db:"external_id"`
	AccountRef string          `json:"account_ref" db:"account_ref"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

type STKPushRequest struct {
	Phone      string          `json:"phone" validate:"required,min=9"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	AccountRef string          `json:"account_ref"`
	Narrative  string          `json:"narrative"`
}

type STKPushResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Provider  string `json:"provider"`
}

// MpesaCallback mirrors the Daraja STK push result payload.
type MpesaCallback struct {
	Body struct {
		STKCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  *struct {
				Item []MpesaCallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type MpesaCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

type ReconcileResult struct {
	Checked int `json:"checked"`
	Matched int `json:"matched"`
}
