package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

// Append inserts one entry. There is deliberately no update or delete query
// in this repository; the journal is append-only.
func (r *journalRepository) Append(ctx context.Context, entry *domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, date, debit_account, credit_account, amount, description, reference_type, reference_id, created_at)
		VALUES (:id, :date, :debit_account, :credit_account, :amount, :description, :reference_type, :reference_id, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *journalRepository) ListAll(ctx context.Context) ([]*domain.JournalEntry, error) {
	query := `SELECT * FROM journal_entries ORDER BY created_at, id`

	var entries []*domain.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}

	return entries, nil
}
