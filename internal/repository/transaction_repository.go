package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, provider, type, status, member_id, loan_id, amount, currency, phone, external_id, account_ref, created_at, updated_at)
		VALUES (:id, :provider, :type, :status, :member_id, :loan_id, :amount, :currency, :phone, :external_id, :account_ref, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, txn)
	return err
}

func (r *transactionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.PaymentTransaction, error) {
	query := `SELECT * FROM payment_transactions WHERE external_id = $1`

	var txn domain.PaymentTransaction
	if err := r.db.GetContext(ctx, &txn, query, externalID); err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepository) ListPending(ctx context.Context) ([]*domain.PaymentTransaction, error) {
	query := `SELECT * FROM payment_transactions WHERE status = $1 ORDER BY created_at`

	var txns []*domain.PaymentTransaction
	if err := r.db.SelectContext(ctx, &txns, query, domain.PaymentStatusPending); err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *transactionRepository) Update(ctx context.Context, txn *domain.PaymentTransaction) error {
	txn.UpdatedAt = time.Now()

	query := `
		UPDATE payment_transactions
		SET status = :status, member_id = :member_id, loan_id = :loan_id, amount = :amount, phone = :phone, updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, txn)
	return err
}
