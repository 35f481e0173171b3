package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// MemberService manages member records.
type MemberService struct {
	members repository.MemberRepository
}

func NewMemberService(members repository.MemberRepository) *MemberService {
	return &MemberService{members: members}
}

// Create registers a member. Member number and national id must both be
// unused.
func (s *MemberService) Create(ctx context.Context, req *domain.CreateMemberRequest) (*domain.Member, error) {
	if _, err := s.members.GetByMemberNumber(ctx, req.MemberNumber); err == nil {
		return nil, customError.WrapDuplicateMember(req.MemberNumber)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if _, err := s.members.GetByNationalID(ctx, req.NationalID); err == nil {
		return nil, customError.WrapDuplicateMember(req.MemberNumber)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	joinDate := req.JoinDate
	if joinDate.IsZero() {
		joinDate = now
	}

	member := &domain.Member{
		ID:           uuid.New(),
		MemberNumber: req.MemberNumber,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		JoinDate:     joinDate,
		Status:       domain.MemberStatusActive,
		KYCVerified:  req.KYCVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return member, nil
}

// Get retrieves a member by id.
func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return member, nil
}

// List returns all members ordered by member number.
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return members, nil
}

// Update applies a partial update to contact and status fields.
func (s *MemberService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Address != nil {
		member.Address = *req.Address
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	if req.KYCVerified != nil {
		member.KYCVerified = *req.KYCVerified
	}

	if err := s.members.Update(ctx, member); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return member, nil
}
