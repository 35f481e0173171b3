package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/internal/config"
	"github.com/saccotech/sacco-engine/internal/domain"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
	"github.com/saccotech/sacco-engine/pkg/utils"
)

// BusinessRules is the peripheral rule checker. It sits in front of the loan
// and contribution services; the allocator itself never consults it.
type BusinessRules struct {
	cfg *config.Config
}

func NewBusinessRules(cfg *config.Config) *BusinessRules {
	return &BusinessRules{cfg: cfg}
}

// ValidateMemberActive rejects transactions from members who are not active
// or have not completed KYC.
func (r *BusinessRules) ValidateMemberActive(member *domain.Member) error {
	if !member.KYCVerified {
		return customError.WrapBusinessRule("member must complete KYC verification")
	}
	if member.Status != domain.MemberStatusActive {
		return customError.WrapBusinessRule("only active members can perform transactions")
	}
	return nil
}

// ValidateLoanEligibility applies the membership-age, contribution-history,
// amount-bound and single-active-loan rules.
func (r *BusinessRules) ValidateLoanEligibility(member *domain.Member, contributions []*domain.Contribution, existingLoans []*domain.Loan, principal decimal.Decimal) error {
	if err := r.ValidateMemberActive(member); err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, -r.cfg.Business.EligibilityMonths, 0)
	if member.JoinDate.After(cutoff) {
		return customError.WrapMemberNotEligible("membership must be at least 6 months old")
	}

	if len(contributions) < r.cfg.Business.EligibilityContribs {
		return customError.WrapMemberNotEligible("at least 3 prior contributions required")
	}

	for _, loan := range existingLoans {
		if loan.Status == domain.LoanStatusApproved || loan.Status == domain.LoanStatusDisbursed {
			return customError.WrapBusinessRule("member already has an active loan")
		}
	}

	if principal.LessThan(r.cfg.MinLoan()) {
		return customError.WrapBusinessRule("loan amount is below the minimum")
	}
	if principal.GreaterThan(r.cfg.MaxLoan()) {
		return customError.WrapBusinessRule("loan amount exceeds the maximum")
	}

	return nil
}

// ValidateContribution applies the single-contribution amount bounds.
func (r *BusinessRules) ValidateContribution(member *domain.Member, amount decimal.Decimal) error {
	if err := r.ValidateMemberActive(member); err != nil {
		return err
	}
	if amount.LessThan(r.cfg.MinContribution()) {
		return customError.WrapBusinessRule("contribution is below the minimum")
	}
	if amount.GreaterThan(r.cfg.MaxContribution()) {
		return customError.WrapBusinessRule("contribution exceeds the single-deposit maximum")
	}
	return nil
}

// ValidateRepayment rejects repayments on loans that are not disbursed and
// amounts beyond the overpayment tolerance over total outstanding.
func (r *BusinessRules) ValidateRepayment(loan *domain.Loan, amount decimal.Decimal) error {
	if loan.Status != domain.LoanStatusDisbursed && loan.Status != domain.LoanStatusInArrears {
		return customError.WrapBusinessRule("can only make repayments on disbursed loans")
	}
	if !amount.IsPositive() {
		return customError.WrapInvalidAmount(amount.String())
	}

	limit := loan.TotalOutstanding().Mul(r.cfg.OverpaymentTolerance())
	if amount.GreaterThan(limit) {
		return customError.WrapBusinessRule("repayment amount exceeds outstanding balance")
	}
	return nil
}

// CalculatePenalty returns the arrears penalty: 5% of the overdue amount,
// prorated over days past due and capped at one month.
func (r *BusinessRules) CalculatePenalty(overdueAmount decimal.Decimal, daysPastDue int) decimal.Decimal {
	if daysPastDue <= 0 {
		return decimal.Zero
	}

	rate := decimal.NewFromFloat(0.05)
	proportion := decimal.NewFromInt(int64(daysPastDue)).Div(decimal.NewFromInt(30))
	if proportion.GreaterThan(decimal.NewFromInt(1)) {
		proportion = decimal.NewFromInt(1)
	}
	return overdueAmount.Mul(rate).Mul(proportion).Round(2)
}

// AssessCreditRisk scores a member on tenure, KYC, contribution history and
// completed loans.
func (r *BusinessRules) AssessCreditRisk(member *domain.Member, contributions []*domain.Contribution, loans []*domain.Loan) string {
	score := 0

	months := utils.MonthsSince(member.JoinDate, time.Now())
	switch {
	case months >= 24:
		score += 30
	case months >= 12:
		score += 20
	case months >= 6:
		score += 10
	}

	if member.KYCVerified {
		score += 20
	}

	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.Amount)
	}
	switch {
	case total.GreaterThanOrEqual(decimal.NewFromInt(100000)):
		score += 25
	case total.GreaterThanOrEqual(decimal.NewFromInt(50000)):
		score += 15
	case total.GreaterThanOrEqual(decimal.NewFromInt(10000)):
		score += 10
	}

	for _, l := range loans {
		if l.Status == domain.LoanStatusClosed {
			score += 15
			break
		}
	}

	switch {
	case score >= 70:
		return domain.RiskLow
	case score >= 40:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}
