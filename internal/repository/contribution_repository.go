package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type contributionRepository struct {
	db *sqlx.DB
}

func NewContributionRepository(db *sqlx.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, member_id, amount, date, type, source, reference, status, payment_transaction_id, created_at)
		VALUES (:id, :member_id, :amount, :date, :type, :source, :reference, :status, :payment_transaction_id, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, contribution)
	return err
}

func (r *contributionRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Contribution, error) {
	query := `SELECT * FROM contributions WHERE member_id = $1 ORDER BY date`

	var contributions []*domain.Contribution
	if err := r.db.SelectContext(ctx, &contributions, query, memberID); err != nil {
		return nil, err
	}

	return contributions, nil
}
