package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// LedgerService posts balanced debit/credit pairs to the journal and derives
// the financial statements by replaying it. Every statement is computed from
// scratch on request; there is no cached or incremental balance state.
type LedgerService struct {
	journal repository.JournalRepository
}

func NewLedgerService(journal repository.JournalRepository) *LedgerService {
	return &LedgerService{journal: journal}
}

// PostInput describes a single double-entry posting.
type PostInput struct {
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	Description   string
	ReferenceType string
	ReferenceID   string
	Date          time.Time
}

// Post appends one balanced entry. A non-positive amount is an invariant
// violation and is rejected before anything is written.
func (s *LedgerService) Post(ctx context.Context, in PostInput) (*domain.JournalEntry, error) {
	if !in.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(in.Amount.String())
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	entry := &domain.JournalEntry{
		ID:            uuid.New(),
		Date:          date,
		DebitAccount:  in.DebitAccount,
		CreditAccount: in.CreditAccount,
		Amount:        in.Amount,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedAt:     time.Now(),
	}

	if err := s.journal.Append(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return entry, nil
}

// TrialBalance replays the whole journal: each entry adds its amount to the
// debit account and subtracts it from the credit account.
func (s *LedgerService) TrialBalance(ctx context.Context) (domain.TrialBalance, error) {
	entries, err := s.journal.ListAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	balances := make(domain.TrialBalance)
	for _, e := range entries {
		balances[e.DebitAccount] = balances[e.DebitAccount].Add(e.Amount)
		balances[e.CreditAccount] = balances[e.CreditAccount].Sub(e.Amount)
	}
	return balances, nil
}

// BalanceSheet partitions the trial balance into assets (1xxx), liabilities
// (2xxx) and equity (3xxx) buckets with per-bucket totals.
func (s *LedgerService) BalanceSheet(ctx context.Context) (*domain.BalanceSheet, error) {
	tb, err := s.TrialBalance(ctx)
	if err != nil {
		return nil, err
	}

	bs := &domain.BalanceSheet{
		Assets:      make(map[string]decimal.Decimal),
		Liabilities: make(map[string]decimal.Decimal),
		Equity:      make(map[string]decimal.Decimal),
	}

	for account, balance := range tb {
		switch {
		case strings.HasPrefix(account, "1"):
			bs.Assets[account] = balance
			bs.Totals.Assets = bs.Totals.Assets.Add(balance)
		case strings.HasPrefix(account, "2"):
			bs.Liabilities[account] = balance
			bs.Totals.Liabilities = bs.Totals.Liabilities.Add(balance)
		case strings.HasPrefix(account, "3"):
			bs.Equity[account] = balance
			bs.Totals.Equity = bs.Totals.Equity.Add(balance)
		}
	}

	return bs, nil
}

// ProfitAndLoss partitions the trial balance into income (4xxx) and expense
// (5xxx) buckets. Totals keep the journal's sign convention, so income
// accounts carry credit (negative) balances and net income is
// income minus expenses.
func (s *LedgerService) ProfitAndLoss(ctx context.Context) (*domain.ProfitAndLoss, error) {
	tb, err := s.TrialBalance(ctx)
	if err != nil {
		return nil, err
	}

	pl := &domain.ProfitAndLoss{
		Income:   make(map[string]decimal.Decimal),
		Expenses: make(map[string]decimal.Decimal),
	}

	for account, balance := range tb {
		switch {
		case strings.HasPrefix(account, "4"):
			pl.Income[account] = balance
			pl.Totals.Income = pl.Totals.Income.Add(balance)
		case strings.HasPrefix(account, "5"):
			pl.Expenses[account] = balance
			pl.Totals.Expenses = pl.Totals.Expenses.Add(balance)
		}
	}

	pl.Totals.NetIncome = pl.Totals.Income.Sub(pl.Totals.Expenses)
	return pl, nil
}

// CheckBalanced verifies the aggregate double-entry invariant: the signed
// trial balance sums to zero. Production paths never call this; each Post is
// balanced by construction. It exists for tests and manual reconciliation.
func (s *LedgerService) CheckBalanced(ctx context.Context) (bool, decimal.Decimal, error) {
	tb, err := s.TrialBalance(ctx)
	if err != nil {
		return false, decimal.Zero, err
	}

	sum := decimal.Zero
	for _, balance := range tb {
		sum = sum.Add(balance)
	}
	return sum.IsZero(), sum, nil
}
