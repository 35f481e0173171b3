package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// ContributionService records member deposits and mirrors each one into the
// ledger: bank is debited, and the credit lands on share capital or member
// savings depending on the contribution type.
type ContributionService struct {
	contributions repository.ContributionRepository
	members       repository.MemberRepository
	ledger        *LedgerService
	rules         *BusinessRules
}

func NewContributionService(
	stores *repository.Stores,
	ledger *LedgerService,
	rules *BusinessRules,
) *ContributionService {
	return &ContributionService{
		contributions: stores.Contributions,
		members:       stores.Members,
		ledger:        ledger,
		rules:         rules,
	}
}

// Create records a contribution and posts it.
func (s *ContributionService) Create(ctx context.Context, req *domain.CreateContributionRequest) (*domain.Contribution, error) {
	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, customError.WrapMemberNotFound(req.MemberID.String())
	}

	if err := s.rules.ValidateContribution(member, req.Amount); err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	contribution := &domain.Contribution{
		ID:        uuid.New(),
		MemberID:  member.ID,
		Amount:    req.Amount,
		Date:      date,
		Type:      req.Type,
		Source:    req.Source,
		Reference: req.Reference,
		Status:    domain.ContributionStatusConfirmed,
		CreatedAt: time.Now(),
	}

	if err := s.contributions.Create(ctx, contribution); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	creditAccount := domain.AccountMemberSavings
	if contribution.Type == domain.ContributionTypeShareCapital {
		creditAccount = domain.AccountShareCapital
	}

	description := strings.TrimSpace(fmt.Sprintf("Contribution %s %s", contribution.Type, contribution.Reference))
	if _, err := s.ledger.Post(ctx, PostInput{
		Amount:        contribution.Amount,
		DebitAccount:  domain.AccountBank,
		CreditAccount: creditAccount,
		Description:   description,
		ReferenceType: domain.RefTypeContribution,
		ReferenceID:   contribution.ID.String(),
	}); err != nil {
		log.Printf("RECONCILE: contribution posting failed for %s amount %s: %v",
			contribution.ID, contribution.Amount.StringFixed(2), err)
		return nil, err
	}

	return contribution, nil
}

// ListForMember returns a member's contribution history.
func (s *ContributionService) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Contribution, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, customError.WrapMemberNotFound(memberID.String())
	}
	list, err := s.contributions.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return list, nil
}
