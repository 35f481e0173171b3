package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/saccotech/sacco-engine/internal/domain"
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByMemberNumber(ctx context.Context, memberNumber string) (*domain.Member, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Member, error)
	List(ctx context.Context) ([]*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	List(ctx context.Context) ([]*domain.Loan, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
}

// RepaymentRepository defines the interface for repayment records
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.Repayment) error
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error)
}

// ContributionRepository defines the interface for contribution records
type ContributionRepository interface {
	Create(ctx context.Context, contribution *domain.Contribution) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Contribution, error)
}

// JournalRepository is the append-only double-entry store. Append never
// updates or deletes; ListAll returns entries in posting order for replay.
type JournalRepository interface {
	Append(ctx context.Context, entry *domain.JournalEntry) error
	ListAll(ctx context.Context) ([]*domain.JournalEntry, error)
}

// TransactionRepository tracks payment-provider transactions
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.PaymentTransaction) error
	GetByExternalID(ctx context.Context, externalID string) (*domain.PaymentTransaction, error)
	ListPending(ctx context.Context) ([]*domain.PaymentTransaction, error)
	Update(ctx context.Context, txn *domain.PaymentTransaction) error
}

// PoolRepository defines the interface for investment pools
type PoolRepository interface {
	Create(ctx context.Context, pool *domain.InvestmentPool) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InvestmentPool, error)
	List(ctx context.Context) ([]*domain.InvestmentPool, error)
	Update(ctx context.Context, pool *domain.InvestmentPool) error
	CreateContribution(ctx context.Context, pc *domain.PoolContribution) error
	ListContributions(ctx context.Context, poolID uuid.UUID) ([]*domain.PoolContribution, error)
}

// Stores bundles every repository behind one seam so wiring code can swap the
// whole storage backend at once.
type Stores struct {
	Members       MemberRepository
	Loans         LoanRepository
	Repayments    RepaymentRepository
	Contributions ContributionRepository
	Journal       JournalRepository
	Transactions  TransactionRepository
	Pools         PoolRepository
}
