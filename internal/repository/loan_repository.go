package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, principal, interest_rate, term_months, repayment_frequency, status, principal_outstanding, interest_accrued, disbursed_at, last_accrued_at, created_at, updated_at)
		VALUES (:id, :member_id, :principal, :interest_rate, :term_months, :repayment_frequency, :status, :principal_outstanding, :interest_accrued, :disbursed_at, :last_accrued_at, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT * FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT * FROM loans ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT * FROM loans WHERE member_id = $1 ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, memberID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error) {
	query := `SELECT * FROM loans WHERE status = $1 ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, status); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	loan.UpdatedAt = time.Now()

	query := `
		UPDATE loans
		SET status = :status, principal_outstanding = :principal_outstanding, interest_accrued = :interest_accrued, disbursed_at = :disbursed_at, last_accrued_at = :last_accrued_at, updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, loan)
	return err
}
