package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PoolStatusOpen    = "OPEN"
	PoolStatusClosed  = "CLOSED"
	PoolStatusMatured = "MATURED"
)

const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// InvestmentPool is a fixed-target collective investment members buy into.
type InvestmentPool struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Description         string          `json:"description" db:"description"`
	TargetAmount        decimal.Decimal `json:"target_amount" db:"target_amount"`
	CurrentAmount       decimal.Decimal `json:"current_amount" db:"current_amount"`
	MinimumContribution decimal.Decimal `json:"minimum_contribution" db:"minimum_contribution"`
	ExpectedReturn      decimal.Decimal `json:"expected_return" db:"expected_return"`
	RiskLevel           string          `json:"risk_level" db:"risk_level"`
	DurationMonths      int             `json:"duration_months" db:"duration_months"`
	Status              string          `json:"status" db:"status"`
	Participants        int             `json:"participants" db:"participants"`
	MaturityDate        *time.Time      `json:"maturity_date,omitempty" db:"maturity_date"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}

// PoolContribution records a member's stake in a pool.
type PoolContribution struct {
	ID       uuid.UUID       `json:"id" db:"id"`
	PoolID   uuid.UUID       `json:"pool_id" db:"pool_id"`
	MemberID uuid.UUID       `json:"member_id" db:"member_id"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Date     time.Time       `json:"date" db:"date"`
	Status   string          `json:"status" db:"status"`
}

type CreatePoolRequest struct {
	Name                string          `json:"name" validate:"required"`
	Description         string          `json:"description"`
	TargetAmount        decimal.Decimal `json:"target_amount" validate:"required"`
	MinimumContribution decimal.Decimal `json:"minimum_contribution" validate:"required"`
	ExpectedReturn      decimal.Decimal `json:"expected_return"`
	RiskLevel           string          `json:"risk_level" validate:"required,oneof=LOW MEDIUM HIGH"`
	DurationMonths      int             `json:"duration_months" validate:"gte=0"`
}

type PoolContributeRequest struct {
	MemberID uuid.UUID       `json:"member_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

type PoolResponse struct {
	Pool          *InvestmentPool     `json:"pool"`
	Contributions []*PoolContribution `json:"contributions"`
}
