package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		INSERT INTO repayments (id, loan_id, amount, interest_component, principal_component, date, source, reference, created_at)
		VALUES (:id, :loan_id, :amount, :interest_component, :principal_component, :date, :source, :reference, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, repayment)
	return err
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	query := `SELECT * FROM repayments WHERE loan_id = $1 ORDER BY date`

	var repayments []*domain.Repayment
	if err := r.db.SelectContext(ctx, &repayments, query, loanID); err != nil {
		return nil, err
	}

	return repayments, nil
}
