package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saccotech/sacco-engine/internal/domain"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, member_number, first_name, last_name, national_id, phone, email, address, join_date, status, kyc_verified, created_at, updated_at)
		VALUES (:id, :member_number, :first_name, :last_name, :national_id, :phone, :email, :address, :join_date, :status, :kyc_verified, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, member)
	return err
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT * FROM members WHERE id = $1`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByMemberNumber(ctx context.Context, memberNumber string) (*domain.Member, error) {
	query := `SELECT * FROM members WHERE member_number = $1`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, memberNumber); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Member, error) {
	query := `SELECT * FROM members WHERE national_id = $1`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, nationalID); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	query := `SELECT * FROM members WHERE phone = $1`

	var member domain.Member
	if err := r.db.GetContext(ctx, &member, query, phone); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	query := `SELECT * FROM members ORDER BY member_number`

	var members []*domain.Member
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	member.UpdatedAt = time.Now()

	query := `
		UPDATE members
		SET phone = :phone, email = :email, address = :address, status = :status, kyc_verified = :kyc_verified, updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, member)
	return err
}
