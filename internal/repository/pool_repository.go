package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type poolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) Create(ctx context.Context, pool *domain.InvestmentPool) error {
	query := `
		INSERT INTO investment_pools (id, name, description, target_amount, current_amount, minimum_contribution, expected_return, risk_level, duration_months, status, participants, maturity_date, created_at)
		VALUES (:id, :name, :description, :target_amount, :current_amount, :minimum_contribution, :expected_return, :risk_level, :duration_months, :status, :participants, :maturity_date, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, pool)
	return err
}

func (r *poolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvestmentPool, error) {
	query := `SELECT * FROM investment_pools WHERE id = $1`

	var pool domain.InvestmentPool
	if err := r.db.GetContext(ctx, &pool, query, id); err != nil {
		return nil, err
	}

	return &pool, nil
}

func (r *poolRepository) List(ctx context.Context) ([]*domain.InvestmentPool, error) {
	query := `SELECT * FROM investment_pools ORDER BY created_at`

	var pools []*domain.InvestmentPool
	if err := r.db.SelectContext(ctx, &pools, query); err != nil {
		return nil, err
	}

	return pools, nil
}

func (r *poolRepository) Update(ctx context.Context, pool *domain.InvestmentPool) error {
	query := `
		UPDATE investment_pools
		SET current_amount = :current_amount, status = :status, participants = :participants
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, pool)
	return err
}

func (r *poolRepository) CreateContribution(ctx context.Context, pc *domain.PoolContribution) error {
	query := `
		INSERT INTO pool_contributions (id, pool_id, member_id, amount, date, status)
		VALUES (:id, :pool_id, :member_id, :amount, :date, :status)
	`

	_, err := r.db.NamedExecContext(ctx, query, pc)
	return err
}

func (r *poolRepository) ListContributions(ctx context.Context, poolID uuid.UUID) ([]*domain.PoolContribution, error) {
	query := `SELECT * FROM pool_contributions WHERE pool_id = $1 ORDER BY date`

	var pcs []*domain.PoolContribution
	if err := r.db.SelectContext(ctx, &pcs, query, poolID); err != nil {
		return nil, err
	}

	return pcs, nil
}
