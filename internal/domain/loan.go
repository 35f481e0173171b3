package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending    = "PENDING"
	LoanStatusApproved   = "APPROVED"
	LoanStatusDisbursed  = "DISBURSED"
	LoanStatusInArrears  = "IN_ARREARS"
	LoanStatusClosed     = "CLOSED"
	LoanStatusWrittenOff = "WRITTEN_OFF"
	LoanStatusRejected   = "REJECTED"
)

const (
	FrequencyMonthly  = "MONTHLY"
	FrequencyWeekly   = "WEEKLY"
	FrequencyBiweekly = "BIWEEKLY"
)

// Loan represents a member loan. Principal, InterestRate and TermMonths are
// fixed at application time; PrincipalOutstanding and InterestAccrued are the
// live balances repayments are allocated against.
type Loan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	MemberID             uuid.UUID       `json:"member_id" db:"member_id"`
	Principal            decimal.Decimal `json:"principal" db:"principal"`
	InterestRate         decimal.Decimal `json:"interest_rate" db:"interest_rate"` // percent per annum
	TermMonths           int             `json:"term_months" db:"term_months"`
	RepaymentFrequency   string          `json:"repayment_frequency" db:"repayment_frequency"`
	Status               string          `json:"status" db:"status"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding" db:"principal_outstanding"`
	InterestAccrued      decimal.Decimal `json:"interest_accrued" db:"interest_accrued"`
	DisbursedAt          *time.Time      `json:"disbursed_at,omitempty" db:"disbursed_at"`
	LastAccruedAt        *time.Time      `json:"last_accrued_at,omitempty" db:"last_accrued_at"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalOutstanding is the sum of principal and interest still owed.
func (l *Loan) TotalOutstanding() decimal.Decimal {
	return l.PrincipalOutstanding.Add(l.InterestAccrued)
}

// Repayment is an immutable record of a single repayment and how it was split.
type Repayment struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	LoanID             uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	InterestComponent  decimal.Decimal `json:"interest_component" db:"interest_component"`
	PrincipalComponent decimal.Decimal `json:"principal_component" db:"principal_component"`
	Date               time.Time       `json:"date" db:"date"`
	Source             string          `json:"source" db:"source"`
	Reference          string          `json:"reference" db:"reference"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type ApplyLoanRequest struct {
	MemberID           uuid.UUID       `json:"member_id" validate:"required"`
	Principal          decimal.Decimal `json:"principal" validate:"required"`
	InterestRate       decimal.Decimal `json:"interest_rate" validate:"required"`
	TermMonths         int             `json:"term_months" validate:"required,gt=0"`
	RepaymentFrequency string          `json:"repayment_frequency" validate:"required,oneof=MONTHLY WEEKLY BIWEEKLY"`
}

type RepayLoanRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Source    string          `json:"source"`
	Reference string          `json:"reference"`
}

type LoanResponse struct {
	Loan     *Loan             `json:"loan"`
	Schedule []AmortizationRow `json:"schedule,omitempty"`
}

type RepaymentResponse struct {
	Repayment *Repayment `json:"repayment"`
	Loan      *Loan      `json:"loan"`
}
