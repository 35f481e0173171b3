package service

import (
	"context"
	"log"
	"time"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository"
	"github.com/saccotech/sacco-engine/pkg/utils"
)

// AccrualService grows interest on disbursed loans. Nothing in the loan
// lifecycle calls it; interest only accrues when the scheduler invokes
// AccrueDaily, so a server running without the scheduler keeps the accrued
// balance at zero.
type AccrualService struct {
	loans repository.LoanRepository
	rules *BusinessRules
}

func NewAccrualService(loans repository.LoanRepository, rules *BusinessRules) *AccrualService {
	return &AccrualService{loans: loans, rules: rules}
}

// AccrueDaily adds one day of interest (balance * rate/100/365) to every
// DISBURSED or IN_ARREARS loan. Idempotent per calendar day via
// LastAccruedAt.
func (s *AccrualService) AccrueDaily(ctx context.Context, now time.Time) (int, error) {
	accrued := 0
	for _, status := range []string{domain.LoanStatusDisbursed, domain.LoanStatusInArrears} {
		loans, err := s.loans.ListByStatus(ctx, status)
		if err != nil {
			return accrued, err
		}

		for _, loan := range loans {
			if loan.LastAccruedAt != nil && utils.SameDay(*loan.LastAccruedAt, now) {
				continue
			}

			interest := loan.PrincipalOutstanding.Mul(utils.DailyRate(loan.InterestRate))
			if !interest.IsPositive() {
				continue
			}

			day := now
			loan.InterestAccrued = loan.InterestAccrued.Add(interest)
			loan.LastAccruedAt = &day

			if err := s.loans.Update(ctx, loan); err != nil {
				log.Printf("accrual update failed for loan %s: %v", loan.ID, err)
				continue
			}
			accrued++
		}
	}
	return accrued, nil
}

// MarkArrears flags DISBURSED loans as IN_ARREARS once their term has fully
// elapsed with principal still outstanding, and accrues the one-off arrears
// penalty onto the interest balance. It never touches any other status;
// WRITTEN_OFF and REJECTED stay manual.
func (s *AccrualService) MarkArrears(ctx context.Context, now time.Time) (int, error) {
	loans, err := s.loans.ListByStatus(ctx, domain.LoanStatusDisbursed)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, loan := range loans {
		if loan.DisbursedAt == nil {
			continue
		}
		due := loan.DisbursedAt.AddDate(0, loan.TermMonths, 0)
		if now.After(due) && loan.PrincipalOutstanding.IsPositive() {
			daysPastDue := int(now.Sub(due).Hours() / 24)
			penalty := s.rules.CalculatePenalty(loan.PrincipalOutstanding, daysPastDue)

			loan.Status = domain.LoanStatusInArrears
			loan.InterestAccrued = loan.InterestAccrued.Add(penalty)
			if err := s.loans.Update(ctx, loan); err != nil {
				log.Printf("arrears update failed for loan %s: %v", loan.ID, err)
				continue
			}
			marked++
		}
	}
	return marked, nil
}
