package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/finance"
	"github.com/saccotech/sacco-engine/internal/repository"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

// LoanService owns the loan lifecycle: apply, approve, disburse, repay,
// schedule. Each mutate-then-post sequence lives inside a single method so a
// transactional store can later wrap it without touching the contracts.
// Disburse and Repay serialize per loan id.
type LoanService struct {
	loans         repository.LoanRepository
	repayments    repository.RepaymentRepository
	contributions repository.ContributionRepository
	members       repository.MemberRepository
	ledger        *LedgerService
	rules         *BusinessRules
	redis         *redis.Client
	cfg           *config.Config
	locks         *keyedLock
}

func NewLoanService(
	stores *repository.Stores,
	ledger *LedgerService,
	rules *BusinessRules,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		loans:         stores.Loans,
		repayments:    stores.Repayments,
		contributions: stores.Contributions,
		members:       stores.Members,
		ledger:        ledger,
		rules:         rules,
		redis:         redisClient,
		cfg:           cfg,
		locks:         newKeyedLock(),
	}
}

// Apply creates a PENDING loan after re-checking eligibility. Handlers gate
// eligibility too, but the precondition is cheap to verify here and the
// service is the last line before the record exists.
func (s *LoanService) Apply(ctx context.Context, req *domain.ApplyLoanRequest) (*domain.Loan, []domain.AmortizationRow, error) {
	if !req.Principal.IsPositive() || !req.InterestRate.IsPositive() {
		return nil, nil, customError.WrapInvalidAmount(req.Principal.String())
	}

	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapMemberNotFound(req.MemberID.String())
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	contribs, err := s.contributions.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	existing, err := s.loans.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if err := s.rules.ValidateLoanEligibility(member, contribs, existing, req.Principal); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                   uuid.New(),
		MemberID:             member.ID,
		Principal:            req.Principal,
		InterestRate:         req.InterestRate,
		TermMonths:           req.TermMonths,
		RepaymentFrequency:   req.RepaymentFrequency,
		Status:               domain.LoanStatusPending,
		PrincipalOutstanding: req.Principal,
		InterestAccrued:      decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	schedule := finance.GenerateSchedule(loan.Principal, loan.InterestRate, loan.TermMonths, now)
	return loan, schedule, nil
}

// Get retrieves a loan by id.
func (s *LoanService) Get(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// List returns all loans.
func (s *LoanService) List(ctx context.Context) ([]*domain.Loan, error) {
	loans, err := s.loans.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// Approve moves a PENDING loan to APPROVED and returns the schedule computed
// from the loan's original terms.
func (s *LoanService) Approve(ctx context.Context, id uuid.UUID) (*domain.Loan, []domain.AmortizationRow, error) {
	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, nil, customError.WrapInvalidTransition(id.String(), loan.Status, domain.LoanStatusApproved)
	}

	loan.Status = domain.LoanStatusApproved
	if err := s.loans.Update(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	schedule := finance.GenerateSchedule(loan.Principal, loan.InterestRate, loan.TermMonths, time.Now())
	return loan, schedule, nil
}

// Disburse moves an APPROVED loan to DISBURSED, stamps DisbursedAt once and
// posts the principal: debit loan receivable, credit bank.
func (s *LoanService) Disburse(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, customError.WrapInvalidTransition(id.String(), loan.Status, domain.LoanStatusDisbursed)
	}

	now := time.Now()
	loan.Status = domain.LoanStatusDisbursed
	loan.DisbursedAt = &now

	if err := s.loans.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	_, err = s.ledger.Post(ctx, PostInput{
		Amount:        loan.Principal,
		DebitAccount:  domain.AccountLoanReceivable,
		CreditAccount: domain.AccountBank,
		Description:   "Loan disbursement",
		ReferenceType: domain.RefTypeLoan,
		ReferenceID:   loan.ID.String(),
	})
	if err != nil {
		// The loan is already DISBURSED; without a shared transaction the
		// ledger now disagrees with the loan store until someone reconciles.
		log.Printf("RECONCILE: disbursement posting failed for loan %s amount %s: %v",
			loan.ID, loan.Principal.StringFixed(2), err)
		return nil, err
	}

	return loan, nil
}

// Repay allocates a payment interest-first against the loan, records the
// repayment, and posts the nonzero components: interest to interest income,
// principal back to loan receivable. The loan closes when both balances hit
// zero; that is the only automatic transition a repayment triggers.
func (s *LoanService) Repay(ctx context.Context, id uuid.UUID, req *domain.RepayLoanRequest) (*domain.Repayment, *domain.Loan, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.rules.ValidateRepayment(loan, req.Amount); err != nil {
		return nil, nil, err
	}

	alloc := finance.Allocate(loan.PrincipalOutstanding, loan.InterestAccrued, req.Amount, true)

	loan.PrincipalOutstanding = floorZero(loan.PrincipalOutstanding.Sub(alloc.Principal))
	loan.InterestAccrued = floorZero(loan.InterestAccrued.Sub(alloc.Interest))
	if loan.PrincipalOutstanding.IsZero() && loan.InterestAccrued.IsZero() {
		loan.Status = domain.LoanStatusClosed
	}

	if err := s.loans.Update(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	source := req.Source
	if source == "" {
		source = domain.PaymentProviderManual
	}

	repayment := &domain.Repayment{
		ID:                 uuid.New(),
		LoanID:             loan.ID,
		Amount:             req.Amount,
		InterestComponent:  alloc.Interest,
		PrincipalComponent: alloc.Principal,
		Date:               time.Now(),
		Source:             source,
		Reference:          req.Reference,
		CreatedAt:          time.Now(),
	}

	if err := s.repayments.Create(ctx, repayment); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if alloc.Interest.IsPositive() {
		if _, err := s.ledger.Post(ctx, PostInput{
			Amount:        alloc.Interest,
			DebitAccount:  domain.AccountBank,
			CreditAccount: domain.AccountInterestIncome,
			Description:   "Loan interest repayment",
			ReferenceType: domain.RefTypeRepayment,
			ReferenceID:   repayment.ID.String(),
		}); err != nil {
			log.Printf("RECONCILE: interest posting failed for repayment %s amount %s: %v",
				repayment.ID, alloc.Interest.StringFixed(2), err)
			return nil, nil, err
		}
	}

	if alloc.Principal.IsPositive() {
		if _, err := s.ledger.Post(ctx, PostInput{
			Amount:        alloc.Principal,
			DebitAccount:  domain.AccountBank,
			CreditAccount: domain.AccountLoanReceivable,
			Description:   "Loan principal repayment",
			ReferenceType: domain.RefTypeRepayment,
			ReferenceID:   repayment.ID.String(),
		}); err != nil {
			log.Printf("RECONCILE: principal posting failed for repayment %s amount %s: %v",
				repayment.ID, alloc.Principal.StringFixed(2), err)
			return nil, nil, err
		}
	}

	return repayment, loan, nil
}

// Schedule recomputes the amortization schedule from the loan's original
// terms, never from the live balances. The terms are immutable so the rows
// are cached in redis under a TTL.
func (s *LoanService) Schedule(ctx context.Context, id uuid.UUID) ([]domain.AmortizationRow, error) {
	cacheKey := "schedule:" + id.String()

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var rows []domain.AmortizationRow
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				return rows, nil
			}
		}
	}

	loan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := loan.CreatedAt
	if loan.DisbursedAt != nil {
		start = *loan.DisbursedAt
	}
	rows := finance.GenerateSchedule(loan.Principal, loan.InterestRate, loan.TermMonths, start)

	if s.redis != nil {
		if encoded, err := json.Marshal(rows); err == nil {
			if err := s.redis.Set(ctx, cacheKey, encoded, s.cfg.ScheduleCacheTTL()).Err(); err != nil {
				log.Printf("schedule cache write failed for loan %s: %v", id, err)
			}
		}
	}

	return rows, nil
}

// AssessRisk scores a member's credit risk from their tenure, KYC status,
// contribution history and completed loans.
func (s *LoanService) AssessRisk(ctx context.Context, memberID uuid.UUID) (string, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", customError.WrapMemberNotFound(memberID.String())
		}
		return "", customError.WrapDatabaseError(err)
	}

	contribs, err := s.contributions.ListByMember(ctx, member.ID)
	if err != nil {
		return "", customError.WrapDatabaseError(err)
	}

	loans, err := s.loans.ListByMember(ctx, member.ID)
	if err != nil {
		return "", customError.WrapDatabaseError(err)
	}

	return s.rules.AssessCreditRisk(member, contribs, loans), nil
}

// Repayments lists the repayment history for a loan.
func (s *LoanService) Repayments(ctx context.Context, id uuid.UUID) ([]*domain.Repayment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.repayments.ListByLoan(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return list, nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
