package finance

import (
	"github.com/shopspring/decimal"

	"github.com/saccotech/sacco-engine/pkg/utils"
)

// Allocation is the split of a cash repayment into its interest and principal
// components.
type Allocation struct {
	Interest  decimal.Decimal
	Principal decimal.Decimal
}

// Allocate splits amount across the loan's accrued interest and outstanding
// principal. With interestFirst the payment settles interest before principal;
// otherwise the precedence is mirrored. Any amount beyond what zeroes both
// balances is discarded, not refunded.
//
// Allocate does not validate amount; callers gate non-positive input.
func Allocate(principalOutstanding, interestAccrued, amount decimal.Decimal, interestFirst bool) Allocation {
	var alloc Allocation
	if interestFirst {
		alloc.Interest = utils.MinDecimal(amount, interestAccrued)
		remaining := amount.Sub(alloc.Interest)
		alloc.Principal = utils.MinDecimal(remaining, principalOutstanding)
	} else {
		alloc.Principal = utils.MinDecimal(amount, principalOutstanding)
		remaining := amount.Sub(alloc.Principal)
		alloc.Interest = utils.MinDecimal(remaining, interestAccrued)
	}
	return alloc
}
