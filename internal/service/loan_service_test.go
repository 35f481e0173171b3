package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
	"github.com/saccotech/sacco-engine/tests/mocks"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			MinLoanAmount:        "1000",
			MaxLoanAmount:        "1000000",
			MinContribution:      "100",
			MaxContribution:      "500000",
			OverpaymentTolerance: "1.1",
			EligibilityMonths:    6,
			EligibilityContribs:  3,
			ScheduleCacheTTL:     "24h",
		},
	}
}

type loanFixture struct {
	stores *repository.Stores
	svc    *LoanService
	ledger *LedgerService
	member *domain.Member
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()
	ctx := context.Background()

	stores := memory.NewStores()
	ledger := NewLedgerService(stores.Journal)
	cfg := newTestConfig()
	svc := NewLoanService(stores, ledger, NewBusinessRules(cfg), nil, cfg)

	member := &domain.Member{
		ID:           uuid.New(),
		MemberNumber: "M-0001",
		FirstName:    "Grace",
		LastName:     "Wanjiku",
		NationalID:   "12345678",
		Phone:        "254712345678",
		JoinDate:     time.Now().AddDate(-1, 0, 0),
		Status:       domain.MemberStatusActive,
		KYCVerified:  true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	assert.NoError(t, stores.Members.Create(ctx, member))

	for i := 0; i < 3; i++ {
		contrib := &domain.Contribution{
			ID:       uuid.New(),
			MemberID: member.ID,
			Amount:   decimal.NewFromInt(5000),
			Date:     time.Now().AddDate(0, -i-1, 0),
			Type:     domain.ContributionTypeSavings,
			Source:   domain.PaymentProviderManual,
			Status:   domain.ContributionStatusConfirmed,
		}
		assert.NoError(t, stores.Contributions.Create(ctx, contrib))
	}

	return &loanFixture{stores: stores, svc: svc, ledger: ledger, member: member}
}

// seedLoan writes a loan directly to the store in the given status.
func (f *loanFixture) seedLoan(t *testing.T, status string, outstanding, accrued decimal.Decimal) *domain.Loan {
	t.Helper()
	now := time.Now()
	loan := &domain.Loan{
		ID:                   uuid.New(),
		MemberID:             f.member.ID,
		Principal:            decimal.NewFromInt(100000),
		InterestRate:         decimal.NewFromInt(12),
		TermMonths:           12,
		RepaymentFrequency:   domain.FrequencyMonthly,
		Status:               status,
		PrincipalOutstanding: outstanding,
		InterestAccrued:      accrued,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if status == domain.LoanStatusDisbursed || status == domain.LoanStatusInArrears {
		loan.DisbursedAt = &now
	}
	assert.NoError(t, f.stores.Loans.Create(context.Background(), loan))
	return loan
}

func TestLoanService_Apply(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)

	loan, schedule, err := f.svc.Apply(ctx, &domain.ApplyLoanRequest{
		MemberID:           f.member.ID,
		Principal:          decimal.NewFromInt(100000),
		InterestRate:       decimal.NewFromInt(12),
		TermMonths:         12,
		RepaymentFrequency: domain.FrequencyMonthly,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPending, loan.Status)
	assert.True(t, loan.PrincipalOutstanding.Equal(loan.Principal))
	assert.True(t, loan.InterestAccrued.IsZero())
	assert.Len(t, schedule, 12)

	stored, err := f.svc.Get(ctx, loan.ID)
	assert.NoError(t, err)
	assert.Equal(t, loan.ID, stored.ID)
}

func TestLoanService_Apply_IneligibleMember(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)

	// A member who joined last month fails the tenure rule.
	young := &domain.Member{
		ID:          uuid.New(),
		JoinDate:    time.Now().AddDate(0, -1, 0),
		Status:      domain.MemberStatusActive,
		KYCVerified: true,
	}
	assert.NoError(t, f.stores.Members.Create(ctx, young))

	_, _, err := f.svc.Apply(ctx, &domain.ApplyLoanRequest{
		MemberID:           young.ID,
		Principal:          decimal.NewFromInt(50000),
		InterestRate:       decimal.NewFromInt(12),
		TermMonths:         6,
		RepaymentFrequency: domain.FrequencyMonthly,
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrMemberNotEligible)
}

func TestLoanService_Apply_AmountOutOfBounds(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)

	tests := []struct {
		name      string
		principal int64
	}{
		{name: "below minimum", principal: 500},
		{name: "above maximum", principal: 2000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.Apply(ctx, &domain.ApplyLoanRequest{
				MemberID:           f.member.ID,
				Principal:          decimal.NewFromInt(tt.principal),
				InterestRate:       decimal.NewFromInt(12),
				TermMonths:         12,
				RepaymentFrequency: domain.FrequencyMonthly,
			})
			assert.Error(t, err)
			assert.ErrorIs(t, err, customError.ErrBusinessRule)
		})
	}
}

func TestLoanService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusPending, decimal.NewFromInt(100000), decimal.Zero)

	approved, schedule, err := f.svc.Approve(ctx, loan.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusApproved, approved.Status)
	assert.Len(t, schedule, 12)

	// Approving twice violates the transition guard.
	_, _, err = f.svc.Approve(ctx, loan.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrInvalidTransition)
}

func TestLoanService_Disburse(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusApproved, decimal.NewFromInt(100000), decimal.Zero)

	disbursed, err := f.svc.Disburse(ctx, loan.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusDisbursed, disbursed.Status)
	assert.NotNil(t, disbursed.DisbursedAt)

	// One posting: debit loan receivable, credit bank, for the principal.
	tb, err := f.ledger.TrialBalance(ctx)
	assert.NoError(t, err)
	assert.True(t, tb[domain.AccountLoanReceivable].Equal(decimal.NewFromInt(100000)))
	assert.True(t, tb[domain.AccountBank].Equal(decimal.NewFromInt(-100000)))
}

func TestLoanService_Disburse_RequiresApproved(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusPending, decimal.NewFromInt(100000), decimal.Zero)

	_, err := f.svc.Disburse(ctx, loan.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrInvalidTransition)

	// No posting happened.
	tb, err := f.ledger.TrialBalance(ctx)
	assert.NoError(t, err)
	assert.Empty(t, tb)
}

func TestLoanService_Repay_SplitsInterestFirst(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(100000), decimal.NewFromInt(5000))

	repayment, updated, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{
		Amount: decimal.NewFromInt(10000),
	})

	assert.NoError(t, err)
	assert.True(t, repayment.InterestComponent.Equal(decimal.NewFromInt(5000)))
	assert.True(t, repayment.PrincipalComponent.Equal(decimal.NewFromInt(5000)))
	assert.True(t, updated.InterestAccrued.IsZero())
	assert.True(t, updated.PrincipalOutstanding.Equal(decimal.NewFromInt(95000)))
	assert.Equal(t, domain.LoanStatusDisbursed, updated.Status)

	// Two postings, one per nonzero component.
	tb, err := f.ledger.TrialBalance(ctx)
	assert.NoError(t, err)
	assert.True(t, tb[domain.AccountBank].Equal(decimal.NewFromInt(10000)))
	assert.True(t, tb[domain.AccountInterestIncome].Equal(decimal.NewFromInt(-5000)))
	assert.True(t, tb[domain.AccountLoanReceivable].Equal(decimal.NewFromInt(-5000)))
}

func TestLoanService_Repay_ClosesOnZeroBalances(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(100), decimal.Zero)

	repayment, updated, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{
		Amount: decimal.NewFromInt(105),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusClosed, updated.Status)
	assert.True(t, updated.PrincipalOutstanding.IsZero())
	// The excess over the outstanding balance is discarded.
	assert.True(t, repayment.PrincipalComponent.Equal(decimal.NewFromInt(100)))
	assert.True(t, repayment.InterestComponent.IsZero())

	// Only the allocated portion reaches the ledger.
	tb, err := f.ledger.TrialBalance(ctx)
	assert.NoError(t, err)
	assert.True(t, tb[domain.AccountLoanReceivable].Equal(decimal.NewFromInt(-100)))
}

func TestLoanService_Repay_StaysOpenWhileInterestRemains(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(1000), decimal.NewFromInt(1100))

	// Interest-first takes 1100 interest, then 900 of the 1000 principal.
	_, updated, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{
		Amount: decimal.NewFromInt(2000),
	})

	assert.NoError(t, err)
	assert.True(t, updated.InterestAccrued.IsZero())
	assert.True(t, updated.PrincipalOutstanding.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.LoanStatusDisbursed, updated.Status)
}

func TestLoanService_Repay_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)

	t.Run("loan not disbursed", func(t *testing.T) {
		loan := f.seedLoan(t, domain.LoanStatusPending, decimal.NewFromInt(100000), decimal.Zero)
		_, _, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{Amount: decimal.NewFromInt(1000)})
		assert.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrBusinessRule)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(100000), decimal.Zero)
		_, _, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{Amount: decimal.Zero})
		assert.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrInvalidAmount)
	})

	t.Run("beyond overpayment tolerance", func(t *testing.T) {
		loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(1000), decimal.Zero)
		_, _, err := f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{Amount: decimal.NewFromInt(1200)})
		assert.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrBusinessRule)
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, _, err := f.svc.Repay(ctx, uuid.New(), &domain.RepayLoanRequest{Amount: decimal.NewFromInt(1000)})
		assert.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrLoanNotFound)
	})
}

func TestLoanService_Schedule(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)
	loan := f.seedLoan(t, domain.LoanStatusDisbursed, decimal.NewFromInt(100000), decimal.Zero)

	rows, err := f.svc.Schedule(ctx, loan.ID)
	assert.NoError(t, err)
	assert.Len(t, rows, 12)
	assert.True(t, rows[11].ClosingBalance.IsZero())

	// Schedule comes from the original terms, not the live balances.
	_, _, err = f.svc.Repay(ctx, loan.ID, &domain.RepayLoanRequest{Amount: decimal.NewFromInt(50000)})
	assert.NoError(t, err)

	again, err := f.svc.Schedule(ctx, loan.ID)
	assert.NoError(t, err)
	assert.True(t, again[0].OpeningBalance.Equal(rows[0].OpeningBalance))
}

func TestLoanService_Get_DatabaseError(t *testing.T) {
	ctx := context.Background()

	loanRepo := new(mocks.MockLoanRepository)
	loanRepo.On("GetByID", tmock.Anything, tmock.Anything).Return(nil, errors.New("connection refused"))

	stores := memory.NewStores()
	stores.Loans = loanRepo
	cfg := newTestConfig()
	svc := NewLoanService(stores, NewLedgerService(stores.Journal), NewBusinessRules(cfg), nil, cfg)

	_, err := svc.Get(ctx, uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, customError.ErrLoanNotFound)
	loanRepo.AssertExpectations(t)
}

func TestLoanService_AssessRisk(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t)

	// One year of tenure, KYC done, 15000 contributed, no closed loans.
	risk, err := f.svc.AssessRisk(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.RiskMedium, risk)

	// A repaid loan lifts the score into the low band.
	f.seedLoan(t, domain.LoanStatusClosed, decimal.Zero, decimal.Zero)
	risk, err = f.svc.AssessRisk(ctx, f.member.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.RiskLow, risk)

	_, err = f.svc.AssessRisk(ctx, uuid.New())
	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)
}
