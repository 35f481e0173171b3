package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ContributionTypeShareCapital = "SHARE_CAPITAL"
	ContributionTypeSavings      = "SAVINGS"
	ContributionTypeOther        = "OTHER"
)

const (
	ContributionStatusPending   = "PENDING"
	ContributionStatusConfirmed = "CONFIRMED"
	ContributionStatusReversed  = "REVERSED"
)

// Contribution is a member deposit of share capital or savings.
type Contribution struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	MemberID             uuid.UUID       `json:"member_id" db:"member_id"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Date                 time.Time       `json:"date" db:"date"`
	Type                 string          `json:"type" db:"type"`
	Source               string          `json:"source" db:"source"`
	Reference            string          `json:"reference" db:"reference"`
	Status               string          `json:"status" db:"status"`
	PaymentTransactionID *uuid.UUID      `json:"payment_transaction_id,omitempty" db:"payment_transaction_id"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
}

type CreateContributionRequest struct {
	MemberID  uuid.UUID       `json:"member_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Date      time.Time       `json:"date"`
	Type      string          `json:"type" validate:"required,oneof=SHARE_CAPITAL SAVINGS OTHER"`
	Source    string          `json:"source" validate:"required"`
	Reference string          `json:"reference"`
}
