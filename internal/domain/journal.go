package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account codes. The first digit decides which statement bucket an account
// lands in: 1 assets, 2 liabilities, 3 equity, 4 income, 5 expenses. Nothing
// enforces this beyond caller discipline.
const (
	AccountBank           = "1001-BANK"
	AccountLoanReceivable = "1101-LOAN-RECEIVABLE"
	AccountMemberSavings  = "2001-MEMBER-SAVINGS"
	AccountShareCapital   = "3001-SHARE-CAPITAL"
	AccountInterestIncome = "4001-INTEREST-INCOME"
	AccountPenaltyIncome  = "4002-PENALTY-INCOME"
	AccountOperatingCosts = "5001-OPERATING-EXPENSES"
)

// Reference types recorded against journal entries.
const (
	RefTypeLoan         = "Loan"
	RefTypeRepayment    = "Repayment"
	RefTypeContribution = "Contribution"
)

// JournalEntry is a single matched debit/credit pair. Entries are append-only
// and never mutated or deleted.
type JournalEntry struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Date          time.Time       `json:"date" db:"date"`
	DebitAccount  string          `json:"debit_account" db:"debit_account"`
	CreditAccount string          `json:"credit_account" db:"credit_account"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description" db:"description"`
	ReferenceType string          `json:"reference_type" db:"reference_type"`
	ReferenceID   string          `json:"reference_id" db:"reference_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// TrialBalance maps account code to its signed balance after replaying the
// whole journal: debits add, credits subtract.
type TrialBalance map[string]decimal.Decimal

// BalanceSheet groups trial-balance rows by the 1/2/3 prefixes.
type BalanceSheet struct {
	Assets      map[string]decimal.Decimal `json:"assets"`
	Liabilities map[string]decimal.Decimal `json:"liabilities"`
	Equity      map[string]decimal.Decimal `json:"equity"`
	Totals      BalanceSheetTotals         `json:"totals"`
}

type BalanceSheetTotals struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
}

// ProfitAndLoss groups trial-balance rows by the 4/5 prefixes.
type ProfitAndLoss struct {
	Income   map[string]decimal.Decimal `json:"income"`
	Expenses map[string]decimal.Decimal `json:"expenses"`
	Totals   ProfitAndLossTotals        `json:"totals"`
}

type ProfitAndLossTotals struct {
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}
