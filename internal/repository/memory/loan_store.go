package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
)

type loanRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]domain.Loan
}

func NewLoanRepository() repository.LoanRepository {
	return &loanRepository{loans: make(map[uuid.UUID]domain.Loan)}
}

func (r *loanRepository) Create(_ context.Context, loan *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[loan.ID] = *loan
	return nil
}

func (r *loanRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (r *loanRepository) List(_ context.Context) ([]*domain.Loan, error) {
	return r.filter(func(domain.Loan) bool { return true }), nil
}

func (r *loanRepository) ListByMember(_ context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	return r.filter(func(l domain.Loan) bool { return l.MemberID == memberID }), nil
}

func (r *loanRepository) ListByStatus(_ context.Context, status string) ([]*domain.Loan, error) {
	return r.filter(func(l domain.Loan) bool { return l.Status == status }), nil
}

func (r *loanRepository) filter(match func(domain.Loan) bool) []*domain.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Loan, 0)
	for _, l := range r.loans {
		if match(l) {
			found := l
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *loanRepository) Update(_ context.Context, loan *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[loan.ID]; !ok {
		return sql.ErrNoRows
	}
	loan.UpdatedAt = time.Now()
	r.loans[loan.ID] = *loan
	return nil
}

type repaymentRepository struct {
	mu         sync.RWMutex
	repayments []domain.Repayment
}

func NewRepaymentRepository() repository.RepaymentRepository {
	return &repaymentRepository{}
}

func (r *repaymentRepository) Create(_ context.Context, repayment *domain.Repayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repayments = append(r.repayments, *repayment)
	return nil
}

func (r *repaymentRepository) ListByLoan(_ context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Repayment, 0)
	for i := range r.repayments {
		if r.repayments[i].LoanID == loanID {
			found := r.repayments[i]
			out = append(out, &found)
		}
	}
	return out, nil
}

type contributionRepository struct {
	mu            sync.RWMutex
	contributions []domain.Contribution
}

func NewContributionRepository() repository.ContributionRepository {
	return &contributionRepository{}
}

func (r *contributionRepository) Create(_ context.Context, contribution *domain.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = append(r.contributions, *contribution)
	return nil
}

func (r *contributionRepository) ListByMember(_ context.Context, memberID uuid.UUID) ([]*domain.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Contribution, 0)
	for i := range r.contributions {
		if r.contributions[i].MemberID == memberID {
			found := r.contributions[i]
			out = append(out, &found)
		}
	}
	return out, nil
}
