package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// PoolService manages collective investment pools. Pool money never touches
// the journal; pools track their own running total.
type PoolService struct {
	pools   repository.PoolRepository
	members repository.MemberRepository
	rules   *BusinessRules
	locks   *keyedLock
}

func NewPoolService(stores *repository.Stores, rules *BusinessRules) *PoolService {
	return &PoolService{
		pools:   stores.Pools,
		members: stores.Members,
		rules:   rules,
		locks:   newKeyedLock(),
	}
}

// Create opens a pool, deriving the maturity date from its duration.
func (s *PoolService) Create(ctx context.Context, req *domain.CreatePoolRequest) (*domain.InvestmentPool, error) {
	if !req.TargetAmount.IsPositive() || !req.MinimumContribution.IsPositive() {
		return nil, customError.WrapInvalidAmount(req.TargetAmount.String())
	}

	now := time.Now()
	pool := &domain.InvestmentPool{
		ID:                  uuid.New(),
		Name:                req.Name,
		Description:         req.Description,
		TargetAmount:        req.TargetAmount,
		CurrentAmount:       decimal.Zero,
		MinimumContribution: req.MinimumContribution,
		ExpectedReturn:      req.ExpectedReturn,
		RiskLevel:           req.RiskLevel,
		DurationMonths:      req.DurationMonths,
		Status:              domain.PoolStatusOpen,
		CreatedAt:           now,
	}
	if req.DurationMonths > 0 {
		maturity := now.AddDate(0, req.DurationMonths, 0)
		pool.MaturityDate = &maturity
	}

	if err := s.pools.Create(ctx, pool); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return pool, nil
}

// Get retrieves a pool by id.
func (s *PoolService) Get(ctx context.Context, id uuid.UUID) (*domain.InvestmentPool, error) {
	pool, err := s.pools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPoolNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return pool, nil
}

// Contributions lists the stakes recorded against a pool.
func (s *PoolService) Contributions(ctx context.Context, id uuid.UUID) ([]*domain.PoolContribution, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.pools.ListContributions(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return list, nil
}

// List returns all pools.
func (s *PoolService) List(ctx context.Context) ([]*domain.InvestmentPool, error) {
	pools, err := s.pools.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return pools, nil
}

// Contribute adds a member's stake to an open pool. The amount must meet the
// pool minimum and must not push the running total past the target; hitting
// the target exactly closes the pool.
func (s *PoolService) Contribute(ctx context.Context, poolID uuid.UUID, req *domain.PoolContributeRequest) (*domain.PoolContribution, error) {
	s.locks.Lock(poolID.String())
	defer s.locks.Unlock(poolID.String())

	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}

	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, customError.WrapMemberNotFound(req.MemberID.String())
	}
	if err := s.rules.ValidateMemberActive(member); err != nil {
		return nil, err
	}

	if pool.Status != domain.PoolStatusOpen {
		return nil, customError.WrapBusinessRule("pool is not open for contributions")
	}
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(req.Amount.String())
	}
	if req.Amount.LessThan(pool.MinimumContribution) {
		return nil, customError.WrapBusinessRule("contribution is below the pool minimum")
	}
	if pool.CurrentAmount.Add(req.Amount).GreaterThan(pool.TargetAmount) {
		return nil, customError.WrapBusinessRule("contribution would exceed the pool target")
	}

	pc := &domain.PoolContribution{
		ID:       uuid.New(),
		PoolID:   pool.ID,
		MemberID: member.ID,
		Amount:   req.Amount,
		Date:     time.Now(),
		Status:   domain.ContributionStatusConfirmed,
	}

	if err := s.pools.CreateContribution(ctx, pc); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	pool.CurrentAmount = pool.CurrentAmount.Add(req.Amount)
	pool.Participants++
	if pool.CurrentAmount.Equal(pool.TargetAmount) {
		pool.Status = domain.PoolStatusClosed
	}

	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return pc, nil
}
