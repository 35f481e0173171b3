// Package memory provides in-memory implementations of the repository
// interfaces. It backs tests and the STORE_DRIVER=memory mode; misses are
// reported as sql.ErrNoRows so callers handle both drivers identically.
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

// NewStores returns a complete in-memory storage backend.
func NewStores() *repository.Stores {
	return &repository.Stores{
		Members:       NewMemberRepository(),
		Loans:         NewLoanRepository(),
		Repayments:    NewRepaymentRepository(),
		Contributions: NewContributionRepository(),
		Journal:       NewJournalRepository(),
		Transactions:  NewTransactionRepository(),
		Pools:         NewPoolRepository(),
	}
}

type memberRepository struct {
	mu      sync.RWMutex
	members map[uuid.UUID]domain.Member
}

func NewMemberRepository() repository.MemberRepository {
	return &memberRepository{members: make(map[uuid.UUID]domain.Member)}
}

func (r *memberRepository) Create(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = *member
	return nil
}

func (r *memberRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r *memberRepository) GetByMemberNumber(_ context.Context, memberNumber string) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.MemberNumber == memberNumber })
}

func (r *memberRepository) GetByNationalID(_ context.Context, nationalID string) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.NationalID == nationalID })
}

func (r *memberRepository) GetByPhone(_ context.Context, phone string) (*domain.Member, error) {
	return r.find(func(m domain.Member) bool { return m.Phone == phone })
}

func (r *memberRepository) find(match func(domain.Member) bool) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if match(m) {
			found := m
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memberRepository) List(_ context.Context) ([]*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Member, 0, len(r.members))
	for _, m := range r.members {
		found := m
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberNumber < out[j].MemberNumber })
	return out, nil
}

func (r *memberRepository) Update(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[member.ID]; !ok {
		return sql.ErrNoRows
	}
	member.UpdatedAt = time.Now()
	r.members[member.ID] = *member
	return nil
}
