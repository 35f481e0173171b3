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

type journalRepository struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

func NewJournalRepository() repository.JournalRepository {
	return &journalRepository{}
}

// Append-only; the slice is never rewritten in place.
func (r *journalRepository) Append(_ context.Context, entry *domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *journalRepository) ListAll(_ context.Context) ([]*domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.JournalEntry, 0, len(r.entries))
	for i := range r.entries {
		found := r.entries[i]
		out = append(out, &found)
	}
	return out, nil
}

type transactionRepository struct {
	mu   sync.RWMutex
	txns map[uuid.UUID]domain.PaymentTransaction
}

func NewTransactionRepository() repository.TransactionRepository {
	return &transactionRepository{txns: make(map[uuid.UUID]domain.PaymentTransaction)}
}

func (r *transactionRepository) Create(_ context.Context, txn *domain.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns[txn.ID] = *txn
	return nil
}

func (r *transactionRepository) GetByExternalID(_ context.Context, externalID string) (*domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.txns {
		if t.ExternalID == externalID {
			found := t
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *transactionRepository) ListPending(_ context.Context) ([]*domain.PaymentTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.PaymentTransaction, 0)
	for _, t := range r.txns {
		if t.Status == domain.PaymentStatusPending {
			found := t
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *transactionRepository) Update(_ context.Context, txn *domain.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txns[txn.ID]; !ok {
		return sql.ErrNoRows
	}
	txn.UpdatedAt = time.Now()
	r.txns[txn.ID] = *txn
	return nil
}

type poolRepository struct {
	mu            sync.RWMutex
	pools         map[uuid.UUID]domain.InvestmentPool
	contributions []domain.PoolContribution
}

func NewPoolRepository() repository.PoolRepository {
	return &poolRepository{pools: make(map[uuid.UUID]domain.InvestmentPool)}
}

func (r *poolRepository) Create(_ context.Context, pool *domain.InvestmentPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[pool.ID] = *pool
	return nil
}

func (r *poolRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.InvestmentPool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *poolRepository) List(_ context.Context) ([]*domain.InvestmentPool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.InvestmentPool, 0, len(r.pools))
	for _, p := range r.pools {
		found := p
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *poolRepository) Update(_ context.Context, pool *domain.InvestmentPool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[pool.ID]; !ok {
		return sql.ErrNoRows
	}
	r.pools[pool.ID] = *pool
	return nil
}

func (r *poolRepository) CreateContribution(_ context.Context, pc *domain.PoolContribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = append(r.contributions, *pc)
	return nil
}

func (r *poolRepository) ListContributions(_ context.Context, poolID uuid.UUID) ([]*domain.PoolContribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.PoolContribution, 0)
	for i := range r.contributions {
		if r.contributions[i].PoolID == poolID {
			found := r.contributions[i]
			out = append(out, &found)
		}
	}
	return out, nil
}
